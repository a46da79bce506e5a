package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultTimeout = 10 * time.Second

// DiscordWebhook posts messages to a Discord channel webhook.
type DiscordWebhook struct {
	url    string
	client *http.Client
}

// NewDiscordWebhook builds a webhook notifier.
func NewDiscordWebhook(url string) (*DiscordWebhook, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	return &DiscordWebhook{
		url:    url,
		client: &http.Client{Timeout: defaultTimeout},
	}, nil
}

// Notify posts one message. Discord limits content to 2000 characters;
// longer messages are truncated rather than dropped.
func (d *DiscordWebhook) Notify(ctx context.Context, message string) error {
	if len(message) > 2000 {
		message = message[:1997] + "..."
	}

	body, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to post webhook message")
		return fmt.Errorf("post webhook message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Error().Int("status", resp.StatusCode).Msg("Webhook rejected message")
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
