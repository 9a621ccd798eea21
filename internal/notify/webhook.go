package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// WebhookSink POSTs notices as JSON to an external endpoint. Audit records are
// not forwarded. A 4xx answer is permanent and is not retried.
type WebhookSink struct {
	url    string
	client *http.Client
}

// NewWebhookSink uses an otelhttp-instrumented client when client is nil.
func NewWebhookSink(url string, client *http.Client) *WebhookSink {
	if client == nil {
		client = &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &WebhookSink{url: url, client: client}
}

// Name identifies the sink in logs and metrics.
func (s *WebhookSink) Name() string { return "webhook" }

// Deliver posts a notice as JSON. Audit records are skipped; a 4xx response
// is permanent and is not retried.
func (s *WebhookSink) Deliver(ctx context.Context, e Event) error {
	if e.Notice == nil {
		return nil
	}
	body, err := json.Marshal(messageOf(e))
	if err != nil {
		return backoff.Permanent(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", e.ID)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return backoff.Permanent(fmt.Errorf("webhook: status %d", resp.StatusCode))
	default:
		return fmt.Errorf("webhook: status %d", resp.StatusCode)
	}
}
