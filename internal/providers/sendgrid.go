package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// SendGrid sends email through the SendGrid v3 mail API.
type SendGrid struct {
	apiKey  string
	from    string
	baseURL string
	client  *fasthttp.Client
	timeout time.Duration
}

func NewSendGrid(apiKey, from, baseURL string, client *fasthttp.Client, timeout time.Duration) *SendGrid {
	return &SendGrid{
		apiKey:  apiKey,
		from:    from,
		baseURL: baseURL,
		client:  client,
		timeout: timeout,
	}
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridMail struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

func (s *SendGrid) SendEmail(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(sendGridMail{
		Personalizations: []sendGridPersonalization{{To: []sendGridAddress{{Email: to}}}},
		From:             sendGridAddress{Email: s.from},
		Subject:          subject,
		Content:          []sendGridContent{{Type: "text/html", Value: body}},
	})
	if err != nil {
		return fmt.Errorf("sendgrid payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.baseURL + "/v3/mail/send")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.SetBody(payload)

	if err := s.client.DoDeadline(req, resp, requestDeadline(ctx, s.timeout)); err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode < 200 || statusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", statusCode, resp.Body())
	}
	return nil
}
