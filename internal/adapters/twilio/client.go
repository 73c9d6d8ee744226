package twilio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	twiliosdk "github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"booking_bot/internal/adapters/observability"
)

const defaultBaseURL = "https://api.twilio.com"

// Client sends WhatsApp messages through the Twilio Messages resource.
type Client struct {
	rest *twiliosdk.RestClient
	sid  string
	from string
}

// New builds the SDK client. A baseURL other than api.twilio.com (a regional
// proxy, or a test server) is applied at the transport level.
func New(baseURL, sid, token, from string, timeout time.Duration) (*Client, error) {
	if sid == "" || token == "" {
		return nil, errors.New("twilio: account sid and auth token are required")
	}
	if from == "" {
		return nil, errors.New("twilio: sender address is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	tr := &observedTransport{next: http.DefaultTransport}
	if baseURL = strings.TrimSuffix(baseURL, "/"); baseURL != "" && baseURL != defaultBaseURL {
		u, err := url.Parse(baseURL)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("twilio: invalid base URL %q", baseURL)
		}
		tr.base = u
	}

	hc := &client.Client{
		Credentials: client.NewCredentials(sid, token),
		HTTPClient:  &http.Client{Timeout: timeout, Transport: tr},
	}
	hc.SetAccountSid(sid)

	return &Client{
		rest: twiliosdk.NewRestClientWithParams(twiliosdk.ClientParams{Client: hc}),
		sid:  sid,
		from: from,
	}, nil
}

type sendResult struct {
	sid string
	err error
}

// Send delivers body to the digits-only number to over WhatsApp and returns the message SID.
// The SDK call is not context-aware; ctx only bounds how long Send waits for it.
func (c *Client) Send(ctx context.Context, to, body string) (string, error) {
	params := &twilioapi.CreateMessageParams{}
	params.SetPathAccountSid(c.sid)
	params.SetFrom(c.from)
	params.SetTo("whatsapp:+" + strings.TrimPrefix(to, "+"))
	params.SetBody(body)

	done := make(chan sendResult, 1)
	go func() {
		msg, err := c.rest.Api.CreateMessage(params)
		done <- toResult(msg, err)
	}()

	select {
	case r := <-done:
		return r.sid, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func toResult(msg *twilioapi.ApiV2010Message, err error) sendResult {
	if err != nil {
		var restErr *client.TwilioRestError
		if errors.As(err, &restErr) {
			return sendResult{err: fmt.Errorf("twilio api error: status=%d code=%d %s: %w",
				restErr.Status, restErr.Code, restErr.Message, restErr)}
		}
		return sendResult{err: fmt.Errorf("twilio: create message: %w", err)}
	}

	var sid, status string
	if msg != nil && msg.Sid != nil {
		sid = *msg.Sid
	}
	if msg != nil && msg.Status != nil {
		status = string(*msg.Status)
	}
	if status == "failed" || status == "undelivered" {
		return sendResult{sid: sid, err: fmt.Errorf("twilio: message %s %s", sid, status)}
	}
	return sendResult{sid: sid}
}

// observedTransport records every outbound call and, when base is set,
// redirects it away from api.twilio.com.
type observedTransport struct {
	base *url.URL
	next http.RoundTripper
}

func (t *observedTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.base != nil {
		r = r.Clone(r.Context())
		r.URL.Scheme = t.base.Scheme
		r.URL.Host = t.base.Host
		r.URL.Path = strings.TrimSuffix(t.base.Path, "/") + r.URL.Path
		r.Host = t.base.Host
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(r)
	if err != nil {
		observability.ObserveExternal("twilio", "messages", 0, time.Since(start))
		return nil, err
	}
	observability.ObserveExternal("twilio", "messages", resp.StatusCode, time.Since(start))
	return resp, nil
}
