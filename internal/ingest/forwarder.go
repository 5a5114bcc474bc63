// Package ingest delivers extracted text to the downstream knowledge-ingestion service.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docetl/internal/model"
)

// Forwarder sends one payload to the ingestion endpoint.
type Forwarder interface {
	Forward(ctx context.Context, p model.ForwardingPayload) error
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ingest endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("ingest endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// maxErrorBody caps how much of an error response ends up in logs.
const maxErrorBody = 512

// HTTPForwarder posts payloads as JSON.
type HTTPForwarder struct {
	endpoint string
	client   *http.Client
}

var _ Forwarder = (*HTTPForwarder)(nil)

// NewHTTPForwarder builds a forwarder for endpoint with an instrumented client.
// A zero timeout leaves the client without a deadline.
func NewHTTPForwarder(endpoint string, timeout time.Duration) *HTTPForwarder {
	return &HTTPForwarder{
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Forward posts p once. It does not retry.
func (f *HTTPForwarder) Forward(ctx context.Context, p model.ForwardingPayload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to ingest endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Noop discards payloads. It is used when no endpoint is configured.
type Noop struct{}

func (Noop) Forward(context.Context, model.ForwardingPayload) error { return nil }
