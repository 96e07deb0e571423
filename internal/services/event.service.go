package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/internal/repository"
)

var ErrInvalidStep = errors.New("invalid notification step")

type EventRepository interface {
	Create(ctx context.Context, ev *model.PDEvent) (*model.PDEvent, error)
	Get(ctx context.Context, id int64) (*model.PDEvent, error)
	ListPublished(ctx context.Context) ([]*model.PDEvent, error)
	UpdateSequence(ctx context.Context, eventID int64, steps []model.NotificationStep) error
}

type EventService struct {
	events EventRepository
}

func NewEventService(events EventRepository) *EventService {
	return &EventService{events: events}
}

func (s *EventService) Create(ctx context.Context, ev *model.PDEvent) (*model.PDEvent, error) {
	if ev.Title == "" {
		return nil, errors.New("event title cannot be empty")
	}
	if ev.DateTime.IsZero() {
		return nil, errors.New("event date_time is required")
	}
	if ev.Status == "" {
		ev.Status = model.EventStatusDraft
	}
	if err := validateSteps(ev.NotificationSequence); err != nil {
		return nil, err
	}
	return s.events.Create(ctx, ev)
}

func (s *EventService) Get(ctx context.Context, id int64) (*model.PDEvent, error) {
	ev, err := s.events.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return ev, err
}

func (s *EventService) ListPublished(ctx context.Context) ([]*model.PDEvent, error) {
	return s.events.ListPublished(ctx)
}

// UpdateSequence replaces an event's notification steps. Steps whose id
// matches an existing one keep their fired flag; a fired reminder is
// never re-armed by an edit.
func (s *EventService) UpdateSequence(ctx context.Context, eventID int64, steps []model.NotificationStep) error {
	if err := validateSteps(steps); err != nil {
		return err
	}
	err := s.events.UpdateSequence(ctx, eventID, steps)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func validateSteps(steps []model.NotificationStep) error {
	for i, step := range steps {
		switch step.Channel {
		case model.ChannelSMS, model.ChannelEmail, model.ChannelBoth:
		default:
			return fmt.Errorf("%w: step %d channel %q", ErrInvalidStep, i, step.Channel)
		}
		switch step.Timing {
		case model.TimingBefore, model.TimingAfter:
		default:
			return fmt.Errorf("%w: step %d timing %q", ErrInvalidStep, i, step.Timing)
		}
		if step.TimingValue <= 0 {
			return fmt.Errorf("%w: step %d timing_value must be positive", ErrInvalidStep, i)
		}
		switch step.Audience {
		case model.StepAudienceRegistered, model.StepAudienceAll:
		default:
			return fmt.Errorf("%w: step %d audience %q", ErrInvalidStep, i, step.Audience)
		}
	}
	return nil
}
