package organizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docetl/internal/model"
)

// Notifier tells the intake service that a file is ready.
type Notifier interface {
	Notify(ctx context.Context, req model.IntakeRequest) error
}

// HTTPNotifier posts intake requests to <baseURL>/process.
type HTTPNotifier struct {
	url    string
	client *http.Client
}

var _ Notifier = (*HTTPNotifier)(nil)

// NewHTTPNotifier targets the intake service at baseURL.
func NewHTTPNotifier(baseURL string, timeout time.Duration) *HTTPNotifier {
	return &HTTPNotifier{
		url: strings.TrimRight(baseURL, "/") + "/process",
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (n *HTTPNotifier) Notify(ctx context.Context, in model.IntakeRequest) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode intake request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify intake service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("intake service returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
