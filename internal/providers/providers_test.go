package providers

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
	ctype  string
	body   string
}

// fakeProvider serves a canned status over an in-memory listener and
// records the last request it saw.
type fakeProvider struct {
	mu     sync.Mutex
	last   recordedRequest
	status int
	client *fasthttp.Client
}

func newFakeProvider(t *testing.T, status int) *fakeProvider {
	t.Helper()
	f := &fakeProvider{status: status}

	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			f.mu.Lock()
			f.last = recordedRequest{
				method: string(ctx.Method()),
				path:   string(ctx.Path()),
				auth:   string(ctx.Request.Header.Peek("Authorization")),
				ctype:  string(ctx.Request.Header.ContentType()),
				body:   string(ctx.PostBody()),
			}
			f.mu.Unlock()
			ctx.SetStatusCode(f.status)
		},
	}
	go server.Serve(ln) //nolint:errcheck

	f.client = &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}

	t.Cleanup(func() {
		server.Shutdown() //nolint:errcheck
		ln.Close()
	})
	return f
}

func (f *fakeProvider) lastRequest() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func TestTwilio_SendSMS(t *testing.T) {
	fake := newFakeProvider(t, fasthttp.StatusCreated)
	tw := NewTwilio("AC0001", "secret", "+15550009999", "http://twilio.test", fake.client, time.Second)

	err := tw.SendSMS(context.Background(), "+15550001111", "Hi Jo & co")
	require.NoError(t, err)

	got := fake.lastRequest()
	assert.Equal(t, fasthttp.MethodPost, got.method)
	assert.Equal(t, "/2010-04-01/Accounts/AC0001/Messages.json", got.path)
	assert.Equal(t, basicAuth("AC0001", "secret"), got.auth)
	assert.Equal(t, "application/x-www-form-urlencoded", got.ctype)
	assert.Equal(t, "Body=Hi+Jo+%26+co&From=%2B15550009999&To=%2B15550001111", got.body)
}

func TestTwilio_SendSMSErrorStatus(t *testing.T) {
	fake := newFakeProvider(t, fasthttp.StatusUnauthorized)
	tw := NewTwilio("AC0001", "wrong", "+15550009999", "http://twilio.test", fake.client, time.Second)

	err := tw.SendSMS(context.Background(), "+15550001111", "Hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSendGrid_SendEmail(t *testing.T) {
	fake := newFakeProvider(t, fasthttp.StatusAccepted)
	sg := NewSendGrid("SG.key", "news@portal.test", "http://sendgrid.test", fake.client, time.Second)

	err := sg.SendEmail(context.Background(), "jo@acme.test", "Spring Summit", "<p>See you there</p>")
	require.NoError(t, err)

	got := fake.lastRequest()
	assert.Equal(t, fasthttp.MethodPost, got.method)
	assert.Equal(t, "/v3/mail/send", got.path)
	assert.Equal(t, "Bearer SG.key", got.auth)
	assert.Equal(t, "application/json", got.ctype)
	assert.JSONEq(t, `{
		"personalizations": [{"to": [{"email": "jo@acme.test"}]}],
		"from": {"email": "news@portal.test"},
		"subject": "Spring Summit",
		"content": [{"type": "text/html", "value": "<p>See you there</p>"}]
	}`, got.body)
}

func TestSendGrid_SendEmailErrorStatus(t *testing.T) {
	fake := newFakeProvider(t, fasthttp.StatusInternalServerError)
	sg := NewSendGrid("SG.key", "news@portal.test", "http://sendgrid.test", fake.client, time.Second)

	err := sg.SendEmail(context.Background(), "jo@acme.test", "Subject", "Body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

type denyPolicy struct{}

func (denyPolicy) Deliver(string) bool { return false }

func TestStubSenders(t *testing.T) {
	ctx := context.Background()

	t.Run("default policy delivers", func(t *testing.T) {
		sms := &StubSMS{}
		email := &StubEmail{}
		for i := 0; i < 10; i++ {
			assert.NoError(t, sms.SendSMS(ctx, "+15550001111", "hi"))
			assert.NoError(t, email.SendEmail(ctx, "jo@acme.test", "s", "b"))
		}
	})

	t.Run("injected policy controls outcome", func(t *testing.T) {
		sms := &StubSMS{Policy: denyPolicy{}}
		email := &StubEmail{Policy: denyPolicy{}}
		assert.ErrorIs(t, sms.SendSMS(ctx, "+15550001111", "hi"), ErrStubFailure)
		assert.ErrorIs(t, email.SendEmail(ctx, "jo@acme.test", "s", "b"), ErrStubFailure)
	})
}

func TestFactory_ChoosesAdapterByCredentials(t *testing.T) {
	f := NewFactory(time.Second, "https://api.twilio.com", "https://api.sendgrid.com")

	t.Run("empty settings degrade to stubs", func(t *testing.T) {
		assert.IsType(t, &StubSMS{}, f.SMS(&model.APISettings{}))
		assert.IsType(t, &StubEmail{}, f.Email(&model.APISettings{}))
	})

	t.Run("nil settings degrade to stubs", func(t *testing.T) {
		assert.IsType(t, &StubSMS{}, f.SMS(nil))
		assert.IsType(t, &StubEmail{}, f.Email(nil))
	})

	t.Run("partial credentials still stub", func(t *testing.T) {
		s := &model.APISettings{TwilioAccountSID: "AC0001", SendGridAPIKey: "SG.key"}
		assert.IsType(t, &StubSMS{}, f.SMS(s))
		assert.IsType(t, &StubEmail{}, f.Email(s))
	})

	t.Run("complete credentials use real adapters", func(t *testing.T) {
		s := &model.APISettings{
			TwilioAccountSID:  "AC0001",
			TwilioAuthToken:   "token",
			TwilioFromNumber:  "+15550009999",
			SendGridAPIKey:    "SG.key",
			SendGridFromEmail: "news@portal.test",
		}
		assert.IsType(t, &Twilio{}, f.SMS(s))
		assert.IsType(t, &SendGrid{}, f.Email(s))
	})
}
