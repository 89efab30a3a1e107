package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Sender posts messages to Discord-compatible webhook URLs.
type Sender struct {
	Client *http.Client
	Logger *zap.Logger
}

func NewSender(timeout time.Duration, logger *zap.Logger) *Sender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Send delivers a plain-content message to the webhook URL. Discord answers
// 204 on success; any 2xx is accepted.
func (s *Sender) Send(ctx context.Context, url, content string) error {
	if s == nil || s.Client == nil {
		return fmt.Errorf("sender not configured")
	}
	if url == "" {
		return fmt.Errorf("empty webhook url")
	}

	body, err := json.Marshal(webhookPayload{Content: content})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(detail))
	}
	s.log().Debug("webhook delivered", zap.Int("status", resp.StatusCode))
	return nil
}

func (s *Sender) log() *zap.Logger {
	if s != nil && s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
