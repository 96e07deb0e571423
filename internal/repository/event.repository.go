package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/pg"
)

var (
	// ErrStepAlreadyFired is returned when a fire attempt finds the
	// step's flag already set.
	ErrStepAlreadyFired = errors.New("notification step already fired")
	// ErrStepNotFound is returned when a step id is not in the event's
	// sequence.
	ErrStepNotFound = errors.New("notification step not found")
)

type EventRepository struct {
	*pg.DB
}

func NewEventRepository(db *pg.DB) *EventRepository {
	return &EventRepository{db}
}

func (r *EventRepository) Create(ctx context.Context, ev *model.PDEvent) (*model.PDEvent, error) {
	for i := range ev.NotificationSequence {
		if ev.NotificationSequence[i].ID == "" {
			ev.NotificationSequence[i].ID = uuid.NewString()
		}
	}

	entity := toEventEntity(ev)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toEventModel(entity), nil
}

func (r *EventRepository) Get(ctx context.Context, id int64) (*model.PDEvent, error) {
	var entity PDEventEntity
	err := r.Read(ctx).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toEventModel(&entity), nil
}

func (r *EventRepository) ListPublished(ctx context.Context) ([]*model.PDEvent, error) {
	var entities []*PDEventEntity
	err := r.Read(ctx).
		Where("status = ?", string(model.EventStatusPublished)).
		Order("date_time ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toEventModels(entities), nil
}

// UpdateSequence replaces an event's notification sequence. A step whose
// id matches an existing step keeps that step's fired flag, so editing an
// event never re-arms a reminder that already went out; steps without a
// match are new and start unfired.
func (r *EventRepository) UpdateSequence(ctx context.Context, eventID int64, steps []model.NotificationStep) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		var entity PDEventEntity
		err := r.Write(ctx).First(&entity, "id = ?", eventID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		fired := make(map[string]bool, len(entity.NotificationSequence))
		for _, s := range entity.NotificationSequence {
			fired[s.ID] = s.Fired
		}

		next := make([]model.NotificationStep, len(steps))
		copy(next, steps)
		for i := range next {
			if next[i].ID == "" {
				next[i].ID = uuid.NewString()
				next[i].Fired = false
				continue
			}
			next[i].Fired = fired[next[i].ID]
		}

		return r.Write(ctx).
			Model(&PDEventEntity{}).
			Where("id = ?", eventID).
			Update("notification_sequence", next).Error
	})
}

// MarkStepFired sets one step's fired flag, rewriting the sequence with
// every other step untouched. Returns ErrStepAlreadyFired when the reread
// shows the flag already set, so a racing runner fires at most once.
func (r *EventRepository) MarkStepFired(ctx context.Context, eventID int64, stepID string) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		var entity PDEventEntity
		err := r.Write(ctx).First(&entity, "id = ?", eventID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		idx := -1
		for i, s := range entity.NotificationSequence {
			if s.ID == stepID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrStepNotFound
		}
		if entity.NotificationSequence[idx].Fired {
			return ErrStepAlreadyFired
		}

		entity.NotificationSequence[idx].Fired = true

		return r.Write(ctx).
			Model(&PDEventEntity{}).
			Where("id = ?", eventID).
			Update("notification_sequence", entity.NotificationSequence).Error
	})
}
