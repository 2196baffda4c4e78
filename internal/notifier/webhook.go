package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/user/registry-watch/pkg/errors"
)

// WebhookClient POSTs notifications as JSON to an arbitrary endpoint.
type WebhookClient struct {
	url    string
	client *http.Client
}

// NewWebhookClient creates a generic webhook delivery channel.
func NewWebhookClient(url string) *WebhookClient {
	return &WebhookClient{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Name returns the channel name.
func (w *WebhookClient) Name() string {
	return "webhook"
}

// SendNotification POSTs {"text": message} to the configured URL.
func (w *WebhookClient) SendNotification(ctx context.Context, message string) error {
	if w.url == "" {
		return errors.New("webhook.SendNotification", "webhook URL is required")
	}

	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return errors.Wrap("webhook.SendNotification", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap("webhook.SendNotification", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "registry-watch/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return errors.Wrapf("webhook.SendNotification", err, "posting to %s", w.url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Newf("webhook.SendNotification", "endpoint returned %d", resp.StatusCode)
	}
	return nil
}
