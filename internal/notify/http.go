// Package notify delivers payment completion events to the TKPAY gateway.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/tkpay/internal/payment"
)

const DefaultTimeout = 10 * time.Second

var ErrEndpointRequired = errors.New("notify: endpoint required")

type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// HTTPNotifier POSTs each event as JSON.
type HTTPNotifier struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

var _ payment.Notifier = (*HTTPNotifier)(nil)

func NewHTTPNotifier(cfg Config) (*HTTPNotifier, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPNotifier{
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (n *HTTPNotifier) Notify(ctx context.Context, event payment.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: encode event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", payment.SDKName+"/"+payment.SDKVersion)
	req.Header.Set("Idempotency-Key", event.EventID)
	if n.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.apiKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post %s: %w", n.endpoint, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify: unexpected status code for POST %s: %d", n.endpoint, resp.StatusCode)
	}
	return nil
}
