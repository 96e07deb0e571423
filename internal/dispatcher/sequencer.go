package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SoHOSolatube/PD-App-sub000/internal/delivery"
	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/internal/repository"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/logger"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/prom"
)

const jobSequence = "sequence"

type EventStore interface {
	ListPublished(ctx context.Context) ([]*model.PDEvent, error)
	MarkStepFired(ctx context.Context, eventID int64, stepID string) error
}

// Sequencer evaluates notification steps of published events and fires
// each at most once. The fired flag is persisted before delivery, so a
// step whose audience or provider is broken is marked done instead of
// retried forever.
type Sequencer struct {
	events   EventStore
	audience AudienceResolver
	engine   Deliverer
	settings SettingsSource
	guard    *StepGuard
	interval time.Duration
	now      func() time.Time
}

// NewSequencer wires the sequencing job. guard may be nil when no
// redis is available; the conditional fired-flag update still holds.
func NewSequencer(events EventStore, audience AudienceResolver, engine Deliverer, settings SettingsSource, guard *StepGuard, interval time.Duration) *Sequencer {
	return &Sequencer{
		events:   events,
		audience: audience,
		engine:   engine,
		settings: settings,
		guard:    guard,
		interval: interval,
		now:      time.Now,
	}
}

func (s *Sequencer) Run(ctx context.Context) {
	logger.Info("sequencer started", "interval", s.interval)

	s.Tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("sequencer stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

func (s *Sequencer) Tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		prom.ObserveTickDuration(jobSequence, time.Since(start).Seconds())
	}()

	events, err := s.events.ListPublished(ctx)
	if err != nil {
		logger.Error("failed to list published events", "error", err)
		return
	}

	now := s.now()
	for _, ev := range events {
		for _, step := range ev.NotificationSequence {
			if step.Fired {
				continue
			}
			if now.Before(StepSendTime(ev.DateTime, step)) {
				continue
			}
			s.fire(ctx, ev, step)
		}
	}
}

// StepOffset converts a step's timing value and unit to a duration. An
// unrecognized unit is treated as days.
func StepOffset(value int, unit model.TimingUnit) time.Duration {
	v := time.Duration(value)
	switch unit {
	case model.UnitMinutes:
		return v * time.Minute
	case model.UnitHours:
		return v * time.Hour
	case model.UnitWeeks:
		return v * 7 * 24 * time.Hour
	default:
		return v * 24 * time.Hour
	}
}

// StepSendTime is the moment a step becomes due.
func StepSendTime(eventTime time.Time, step model.NotificationStep) time.Time {
	offset := StepOffset(step.TimingValue, step.TimingUnit)
	if step.Timing == model.TimingBefore {
		return eventTime.Add(-offset)
	}
	return eventTime.Add(offset)
}

func (s *Sequencer) fire(ctx context.Context, ev *model.PDEvent, step model.NotificationStep) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while firing step", "event_id", ev.ID, "step_id", step.ID, "panic", r)
		}
	}()

	if s.guard != nil {
		if err := s.guard.Acquire(ev.ID, step.ID); err != nil {
			logger.Debug("step skipped", "event_id", ev.ID, "step_id", step.ID, "reason", err)
			return
		}
	}

	// Flip the flag first. Delivery errors after this point are logged
	// and swallowed; the step never fires twice.
	if err := s.events.MarkStepFired(ctx, ev.ID, step.ID); err != nil {
		if s.guard != nil {
			s.guard.Release(ev.ID, step.ID)
		}
		if errors.Is(err, repository.ErrStepAlreadyFired) {
			logger.Debug("step already fired", "event_id", ev.ID, "step_id", step.ID)
			return
		}
		logger.Error("failed to mark step fired", "event_id", ev.ID, "step_id", step.ID, "error", err)
		return
	}
	if s.guard != nil {
		s.guard.MarkFired(ev.ID, step.ID)
	}
	prom.AddStepFired()

	apiSettings, err := s.settings.Get(ctx)
	if err != nil {
		logger.Error("failed to load provider settings for step", "event_id", ev.ID, "step_id", step.ID, "error", err)
		return
	}

	recipients, err := s.audience.Resolve(ctx, stepTarget(ev, step))
	if err != nil {
		logger.Error("failed to resolve step audience", "event_id", ev.ID, "step_id", step.ID, "error", err)
		return
	}

	content := step.CustomContent
	if content == "" {
		content = defaultReminder(ev, step)
	}

	analytics := s.engine.Deliver(ctx, delivery.Request{
		Channel:      step.Channel,
		SMSContent:   content,
		EmailSubject: ev.Title,
		EmailContent: content,
		Recipients:   recipients,
		Settings:     apiSettings,
	})
	logger.Info("notification step fired",
		"event_id", ev.ID,
		"step_id", step.ID,
		"recipients", len(recipients),
		"sms_delivered", analytics.SMSDelivered,
		"email_delivered", analytics.EmailDelivered)
}

func stepTarget(ev *model.PDEvent, step model.NotificationStep) model.AudienceTarget {
	if step.Audience == model.StepAudienceRegistered {
		return model.AudienceTarget{Type: model.AudienceEventRegistered, EventID: ev.ID}
	}
	return model.AudienceTarget{Type: model.AudienceAll}
}

func defaultReminder(ev *model.PDEvent, step model.NotificationStep) string {
	when := ev.DateTime.Format("Monday, January 2 at 3:04 PM")
	if step.Timing == model.TimingBefore {
		return fmt.Sprintf("Reminder: %s is coming up on %s.", ev.Title, when)
	}
	return fmt.Sprintf("Thank you for joining us at %s. We hope to see you again soon.", ev.Title)
}
