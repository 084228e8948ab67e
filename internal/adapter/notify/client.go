// Package notify delivers best-effort out-of-band alerts when an approval
// is queued. Delivery failures are the caller's to swallow: the approval
// item in the store is the source of truth regardless.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Notifier posts alerts somewhere a human will see them.
type Notifier interface {
	Notify(ctx context.Context, subject, text string) error
}

// Client posts alerts to a webhook URL. An empty URL disables delivery.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

var _ Notifier = (*Client)(nil)

// NewClient creates a webhook notifier.
func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: strings.TrimSpace(webhookURL),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type payload struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Notify posts one alert. A no-op when no webhook is configured.
func (c *Client) Notify(ctx context.Context, subject, text string) error {
	if c.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(payload{Subject: subject, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned %d", resp.StatusCode)
	}
	return nil
}
