// Package delivery fans one message out to its resolved recipients,
// channel by channel, and tallies the outcome.
package delivery

import (
	"context"
	"sync"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/internal/providers"
	"github.com/SoHOSolatube/PD-App-sub000/internal/render"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/logger"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/prom"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/worker"
)

const (
	ChannelLabelSMS   = "sms"
	ChannelLabelEmail = "email"

	// fanOutWorkers bounds provider calls in flight for one message.
	fanOutWorkers = 8
)

// SenderFactory builds channel senders from the provider settings in
// effect for this cycle.
type SenderFactory interface {
	SMS(s *model.APISettings) providers.SMSSender
	Email(s *model.APISettings) providers.EmailSender
}

type Engine struct {
	senders SenderFactory
	workers int
}

func NewEngine(senders SenderFactory) *Engine {
	return &Engine{senders: senders, workers: fanOutWorkers}
}

// Request is one message ready to go out. Content still carries merge
// tags; the engine renders per contact.
type Request struct {
	Channel      model.Channel
	SMSContent   string
	EmailSubject string
	EmailContent string
	Recipients   []*model.Contact
	Settings     *model.APISettings
}

// Deliver sends to every eligible recipient and returns the counters.
// A recipient is skipped on a channel when the contact has no address
// for it or has opted out; skipped sends are not counted as attempts.
// Individual failures are logged and never stop the fan-out.
//
// Recipients are fanned out over a bounded worker pool; Deliver
// returns after the last send finished.
func (e *Engine) Deliver(ctx context.Context, req Request) model.DeliveryAnalytics {
	var (
		mu        sync.Mutex
		analytics model.DeliveryAnalytics
	)

	if len(req.Recipients) == 0 {
		return analytics
	}

	sms := e.senders.SMS(req.Settings)
	email := e.senders.Email(req.Settings)

	pool := worker.NewPool(len(req.Recipients), e.workers)
	pool.SetHandler(func(_ int, job interface{}) {
		contact := job.(*model.Contact)

		if req.Channel.IncludesSMS() && contact.Phone != "" && !contact.OptOutSMS {
			mu.Lock()
			analytics.SMSTotal++
			mu.Unlock()
			prom.AddDeliveryAttempt(ChannelLabelSMS)

			body := render.Merge(req.SMSContent, contact)
			if err := sms.SendSMS(ctx, contact.Phone, body); err != nil {
				logger.Warn("sms delivery failed", "contact_id", contact.ID, "error", err)
			} else {
				mu.Lock()
				analytics.SMSDelivered++
				mu.Unlock()
				prom.AddDeliveryDelivered(ChannelLabelSMS)
			}
		}

		if req.Channel.IncludesEmail() && contact.Email != "" && !contact.OptOutEmail {
			mu.Lock()
			analytics.EmailTotal++
			mu.Unlock()
			prom.AddDeliveryAttempt(ChannelLabelEmail)

			subject := render.Merge(req.EmailSubject, contact)
			body := render.Merge(req.EmailContent, contact)
			if err := email.SendEmail(ctx, contact.Email, subject, body); err != nil {
				logger.Warn("email delivery failed", "contact_id", contact.ID, "error", err)
			} else {
				mu.Lock()
				analytics.EmailDelivered++
				mu.Unlock()
				prom.AddDeliveryDelivered(ChannelLabelEmail)
			}
		}
	})

	if err := pool.Start(); err != nil {
		logger.Error("delivery fan-out failed to start", "error", err)
		return analytics
	}
	for _, contact := range req.Recipients {
		pool.Enqueue(contact)
	}
	pool.Stop()

	return analytics
}
