// Package providers holds the outbound delivery adapters. Each channel
// has a real HTTP adapter and a stub that simulates delivery; the
// factory picks per channel based on whether credentials are present,
// so a half-configured install still processes broadcasts.
package providers

import (
	"context"
	"errors"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/logger"
)

var ErrStubFailure = errors.New("simulated delivery failure")

// SMSSender delivers one SMS. A nil error means the provider accepted
// the message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// EmailSender delivers one email.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// StubPolicy decides the outcome of a simulated delivery. Stub sends
// never touch the network, so the policy is the only source of
// failure; the default delivers everything.
type StubPolicy interface {
	Deliver(to string) bool
}

// AlwaysDeliver is the default StubPolicy.
type AlwaysDeliver struct{}

func (AlwaysDeliver) Deliver(string) bool { return true }

type StubSMS struct {
	Policy StubPolicy
}

func (s *StubSMS) SendSMS(_ context.Context, to, body string) error {
	if !s.policy().Deliver(to) {
		return ErrStubFailure
	}
	logger.Debug("stub SMS delivered", "to", to, "len", len(body))
	return nil
}

func (s *StubSMS) policy() StubPolicy {
	if s.Policy == nil {
		return AlwaysDeliver{}
	}
	return s.Policy
}

type StubEmail struct {
	Policy StubPolicy
}

func (s *StubEmail) SendEmail(_ context.Context, to, subject, _ string) error {
	if !s.policy().Deliver(to) {
		return ErrStubFailure
	}
	logger.Debug("stub email delivered", "to", to, "subject", subject)
	return nil
}

func (s *StubEmail) policy() StubPolicy {
	if s.Policy == nil {
		return AlwaysDeliver{}
	}
	return s.Policy
}

// Factory builds channel senders from the stored provider settings.
// Settings are reread each delivery cycle, so adapters are constructed
// fresh per cycle; the fasthttp client is shared.
type Factory struct {
	Client          *fasthttp.Client
	Timeout         time.Duration
	TwilioBaseURL   string
	SendGridBaseURL string
	Stub            StubPolicy
}

func NewFactory(timeout time.Duration, twilioBaseURL, sendgridBaseURL string) *Factory {
	return &Factory{
		Client: &fasthttp.Client{
			MaxConnsPerHost:     32,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 60 * time.Second,
		},
		Timeout:         timeout,
		TwilioBaseURL:   twilioBaseURL,
		SendGridBaseURL: sendgridBaseURL,
	}
}

// SMS returns the Twilio adapter when credentials are complete,
// otherwise the stub.
func (f *Factory) SMS(s *model.APISettings) SMSSender {
	if s != nil && s.TwilioConfigured() {
		return NewTwilio(s.TwilioAccountSID, s.TwilioAuthToken, s.TwilioFromNumber, f.TwilioBaseURL, f.Client, f.Timeout)
	}
	logger.Debug("twilio credentials incomplete, using stub sender")
	return &StubSMS{Policy: f.Stub}
}

// Email returns the SendGrid adapter when credentials are complete,
// otherwise the stub.
func (f *Factory) Email(s *model.APISettings) EmailSender {
	if s != nil && s.SendGridConfigured() {
		return NewSendGrid(s.SendGridAPIKey, s.SendGridFromEmail, f.SendGridBaseURL, f.Client, f.Timeout)
	}
	logger.Debug("sendgrid credentials incomplete, using stub sender")
	return &StubEmail{Policy: f.Stub}
}

func requestDeadline(ctx context.Context, timeout time.Duration) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}
	return time.Now().Add(timeout)
}
