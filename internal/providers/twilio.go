package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"
)

// Twilio sends SMS through the Twilio Messages API.
type Twilio struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *fasthttp.Client
	timeout    time.Duration
}

func NewTwilio(accountSID, authToken, from, baseURL string, client *fasthttp.Client, timeout time.Duration) *Twilio {
	return &Twilio{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    baseURL,
		client:     client,
		timeout:    timeout,
	}
}

func (t *Twilio) SendSMS(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.from)
	form.Set("Body", body)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.accountSID))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.Header.Set("Authorization", basicAuth(t.accountSID, t.authToken))
	req.SetBodyString(form.Encode())

	if err := t.client.DoDeadline(req, resp, requestDeadline(ctx, t.timeout)); err != nil {
		return fmt.Errorf("twilio request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode < 200 || statusCode >= 300 {
		return fmt.Errorf("twilio returned status %d: %s", statusCode, resp.Body())
	}
	return nil
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}
