package services

import (
	"context"
	"errors"
	"time"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/internal/repository"
)

var (
	ErrNotFound       = errors.New("error notfound")
	ErrPastSchedule   = errors.New("scheduled time is in the past")
	ErrSubjectMissing = errors.New("email subject cannot be empty")
)

type BroadcastRepository interface {
	Create(ctx context.Context, b *model.Broadcast) (*model.Broadcast, error)
	Get(ctx context.Context, id int64) (*model.Broadcast, error)
	List(ctx context.Context, f model.BroadcastFilter) ([]*model.Broadcast, int64, error)
	UpdateScheduledAt(ctx context.Context, id int64, at time.Time) error
}

type BroadcastService struct {
	broadcasts BroadcastRepository
	now        func() time.Time
}

func NewBroadcastService(broadcasts BroadcastRepository) *BroadcastService {
	return &BroadcastService{
		broadcasts: broadcasts,
		now:        time.Now,
	}
}

// Create composes a broadcast. With a ScheduledAt it lands as
// scheduled and the dispatcher picks it up; without one it stays a
// draft until Schedule is called.
func (s *BroadcastService) Create(ctx context.Context, p model.BroadcastCreateRequest) (*model.Broadcast, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Channel.IncludesEmail() && p.Subject == "" {
		return nil, ErrSubjectMissing
	}

	status := model.BroadcastStatusDraft
	if p.ScheduledAt != nil {
		if p.ScheduledAt.Before(s.now()) {
			return nil, ErrPastSchedule
		}
		status = model.BroadcastStatusScheduled
	}

	return s.broadcasts.Create(ctx, &model.Broadcast{
		Channel:     p.Channel,
		Status:      status,
		SMSContent:  p.SMSContent,
		Subject:     p.Subject,
		EmailHTML:   p.EmailHTML,
		Audience:    p.Audience,
		ScheduledAt: p.ScheduledAt,
	})
}

// Schedule sets the send time on a draft or reschedules a still
// scheduled broadcast.
func (s *BroadcastService) Schedule(ctx context.Context, id int64, at time.Time) error {
	if at.Before(s.now()) {
		return ErrPastSchedule
	}
	err := s.broadcasts.UpdateScheduledAt(ctx, id, at)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *BroadcastService) Get(ctx context.Context, id int64) (*model.Broadcast, error) {
	b, err := s.broadcasts.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *BroadcastService) List(ctx context.Context, f model.BroadcastFilter) ([]*model.Broadcast, int64, error) {
	return s.broadcasts.List(ctx, f)
}
