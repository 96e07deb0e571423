// Package dispatcher runs the scheduler's periodic jobs: due-broadcast
// dispatch and event notification sequencing. Both jobs claim work
// with conditional updates so extra scheduler replicas stay safe.
package dispatcher

import (
	"context"
	"time"

	"github.com/SoHOSolatube/PD-App-sub000/internal/delivery"
	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/logger"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/prom"
)

const (
	jobDispatch = "dispatch"

	statusSent   = "sent"
	statusFailed = "failed"
)

type BroadcastStore interface {
	ListDue(ctx context.Context, now time.Time) ([]*model.Broadcast, error)
	ClaimDue(ctx context.Context, ids []int64) (int64, error)
	MarkSent(ctx context.Context, id int64, analytics model.DeliveryAnalytics, sentAt time.Time) error
	MarkFailed(ctx context.Context, id int64) error
}

type AudienceResolver interface {
	Resolve(ctx context.Context, target model.AudienceTarget) ([]*model.Contact, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, req delivery.Request) model.DeliveryAnalytics
}

type SettingsSource interface {
	Get(ctx context.Context) (*model.APISettings, error)
}

// Dispatcher scans for due broadcasts and sends them. A broadcast is
// processed only after its conditional claim flips scheduled to
// sending, so a message is sent by at most one worker.
type Dispatcher struct {
	broadcasts BroadcastStore
	audience   AudienceResolver
	engine     Deliverer
	settings   SettingsSource
	interval   time.Duration
	now        func() time.Time
}

func NewDispatcher(broadcasts BroadcastStore, audience AudienceResolver, engine Deliverer, settings SettingsSource, interval time.Duration) *Dispatcher {
	return &Dispatcher{
		broadcasts: broadcasts,
		audience:   audience,
		engine:     engine,
		settings:   settings,
		interval:   interval,
		now:        time.Now,
	}
}

// Run ticks until the context is canceled. The first tick happens
// immediately so a restart picks up overdue work without waiting a
// full interval.
func (d *Dispatcher) Run(ctx context.Context) {
	logger.Info("dispatcher started", "interval", d.interval)

	d.Tick(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("dispatcher stopped")
			return
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick processes every broadcast due as of now. Failures are per
// broadcast; one bad message never blocks the rest of the batch.
func (d *Dispatcher) Tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		prom.ObserveTickDuration(jobDispatch, time.Since(start).Seconds())
	}()

	now := d.now()
	due, err := d.broadcasts.ListDue(ctx, now)
	if err != nil {
		logger.Error("failed to list due broadcasts", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}
	logger.Info("processing due broadcasts", "count", len(due))

	for _, b := range due {
		d.process(ctx, b, now)
	}
}

func (d *Dispatcher) process(ctx context.Context, b *model.Broadcast, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while sending broadcast", "broadcast_id", b.ID, "panic", r)
			d.fail(ctx, b.ID)
		}
	}()

	claimed, err := d.broadcasts.ClaimDue(ctx, []int64{b.ID})
	if err != nil {
		logger.Error("failed to claim broadcast", "broadcast_id", b.ID, "error", err)
		return
	}
	if claimed == 0 {
		// Another worker got there first.
		logger.Debug("broadcast already claimed", "broadcast_id", b.ID)
		return
	}

	apiSettings, err := d.settings.Get(ctx)
	if err != nil {
		logger.Error("failed to load provider settings", "broadcast_id", b.ID, "error", err)
		d.fail(ctx, b.ID)
		return
	}

	recipients, err := d.audience.Resolve(ctx, b.Audience)
	if err != nil {
		logger.Error("failed to resolve audience", "broadcast_id", b.ID, "error", err)
		d.fail(ctx, b.ID)
		return
	}

	analytics := d.engine.Deliver(ctx, delivery.Request{
		Channel:      b.Channel,
		SMSContent:   b.SMSContent,
		EmailSubject: b.Subject,
		EmailContent: b.EmailHTML,
		Recipients:   recipients,
		Settings:     apiSettings,
	})

	if err := d.broadcasts.MarkSent(ctx, b.ID, analytics, now); err != nil {
		logger.Error("failed to mark broadcast sent", "broadcast_id", b.ID, "error", err)
		return
	}
	prom.AddMessageFinal(statusSent)
	logger.Info("broadcast sent",
		"broadcast_id", b.ID,
		"sms_delivered", analytics.SMSDelivered,
		"sms_total", analytics.SMSTotal,
		"email_delivered", analytics.EmailDelivered,
		"email_total", analytics.EmailTotal)
}

func (d *Dispatcher) fail(ctx context.Context, id int64) {
	if err := d.broadcasts.MarkFailed(ctx, id); err != nil {
		logger.Error("failed to mark broadcast failed", "broadcast_id", id, "error", err)
		return
	}
	prom.AddMessageFinal(statusFailed)
}
