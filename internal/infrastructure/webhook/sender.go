// Package webhook posts rule action payloads to external endpoints.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"flowdesk/internal/shared/logger"
)

const defaultTimeout = 10 * time.Second

// Sender delivers webhook payloads with a bounded per-request timeout.
// Retries are the caller's concern; a non-2xx response is returned as an
// error so the action executor's backoff applies.
type Sender struct {
	client *http.Client
	logger logger.Interface
}

// NewSender creates a new webhook Sender instance.
func NewSender(timeout time.Duration, log logger.Interface) *Sender {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Sender{
		client: &http.Client{Timeout: timeout},
		logger: log,
	}
}

// Send posts the payload as JSON to the endpoint.
func (s *Sender) Send(ctx context.Context, endpoint string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "flowdesk-automation/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}

	s.logger.Debugw("webhook delivered", "endpoint", endpoint, "status", resp.StatusCode)
	return nil
}
