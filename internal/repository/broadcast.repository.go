package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/pg"
)

type BroadcastRepository struct {
	*pg.DB
}

func NewBroadcastRepository(db *pg.DB) *BroadcastRepository {
	return &BroadcastRepository{db}
}

func (r *BroadcastRepository) Create(ctx context.Context, b *model.Broadcast) (*model.Broadcast, error) {
	entity := toBroadcastEntity(b)

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toBroadcastModel(entity), nil
}

func (r *BroadcastRepository) Get(ctx context.Context, id int64) (*model.Broadcast, error) {
	var entity BroadcastEntity
	err := r.Read(ctx).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toBroadcastModel(&entity), nil
}

func (r *BroadcastRepository) List(ctx context.Context, f model.BroadcastFilter) ([]*model.Broadcast, int64, error) {
	q := r.Read(ctx).Model(&BroadcastEntity{})

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where("status IN ?", statuses)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at"
	if f.Desc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*BroadcastEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toBroadcastModels(entities), total, nil
}

// ListDue returns broadcasts that are scheduled and whose send time has
// passed, oldest first.
func (r *BroadcastRepository) ListDue(ctx context.Context, now time.Time) ([]*model.Broadcast, error) {
	var entities []*BroadcastEntity
	err := r.Read(ctx).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", string(model.BroadcastStatusScheduled), now).
		Order("scheduled_at ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toBroadcastModels(entities), nil
}

// ClaimDue flips the given broadcasts from scheduled to sending in one
// conditional batch update and reports how many rows were actually
// claimed. A broadcast another runner already claimed is left alone.
func (r *BroadcastRepository) ClaimDue(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.Write(ctx).
		Model(&BroadcastEntity{}).
		Where("id IN ? AND status = ?", ids, string(model.BroadcastStatusScheduled)).
		Update("status", string(model.BroadcastStatusSending))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// MarkSent records a completed send cycle: terminal status, completion
// time and the per-channel counters. Conditional on the row still being
// in sending state.
func (r *BroadcastRepository) MarkSent(ctx context.Context, id int64, analytics model.DeliveryAnalytics, sentAt time.Time) error {
	return r.Write(ctx).
		Model(&BroadcastEntity{}).
		Where("id = ? AND status = ?", id, string(model.BroadcastStatusSending)).
		Updates(map[string]interface{}{
			"status":    string(model.BroadcastStatusSent),
			"sent_at":   sentAt,
			"analytics": analytics,
		}).Error
}

// MarkFailed moves a claimed broadcast to the failed terminal state.
func (r *BroadcastRepository) MarkFailed(ctx context.Context, id int64) error {
	return r.Write(ctx).
		Model(&BroadcastEntity{}).
		Where("id = ? AND status = ?", id, string(model.BroadcastStatusSending)).
		Update("status", string(model.BroadcastStatusFailed)).Error
}

// UpdateScheduledAt schedules a draft broadcast.
func (r *BroadcastRepository) UpdateScheduledAt(ctx context.Context, id int64, at time.Time) error {
	res := r.Write(ctx).
		Model(&BroadcastEntity{}).
		Where("id = ? AND status IN ?", id, []string{
			string(model.BroadcastStatusDraft),
			string(model.BroadcastStatusScheduled),
		}).
		Updates(map[string]interface{}{
			"status":       string(model.BroadcastStatusScheduled),
			"scheduled_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
