package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/user/registry-watch/pkg/errors"
)

const (
	telegramBaseURL = "https://api.telegram.org/bot%s/%s"
	// Telegram rejects messages longer than this.
	telegramMaxMessageLength = 4096
	telegramMaxRetries       = 3
	telegramRetryDelay       = 2 * time.Second
)

// TelegramClient delivers notifications through the Telegram bot API.
type TelegramClient struct {
	botToken string
	chatID   string
	client   *http.Client
	baseURL  string
}

// NewTelegramClient creates a Telegram delivery channel.
func NewTelegramClient(botToken, chatID string) *TelegramClient {
	return &TelegramClient{
		botToken: botToken,
		chatID:   chatID,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: telegramBaseURL,
	}
}

// Name returns the channel name.
func (t *TelegramClient) Name() string {
	return "telegram"
}

// SendNotification delivers a message, splitting it when it exceeds the
// Telegram length limit and retrying transient failures.
func (t *TelegramClient) SendNotification(ctx context.Context, message string) error {
	if t.botToken == "" {
		return errors.New("telegram.SendNotification", "bot token is required")
	}
	if t.chatID == "" {
		return errors.New("telegram.SendNotification", "chat ID is required")
	}

	if len(message) <= telegramMaxMessageLength {
		return t.sendSingleMessage(ctx, message)
	}

	parts := splitMessage(message, telegramMaxMessageLength)
	for i, part := range parts {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(100 * time.Millisecond):
			}
		}
		if err := t.sendSingleMessage(ctx, part); err != nil {
			return errors.Wrapf("telegram.SendNotification", err, "sending message part %d/%d", i+1, len(parts))
		}
	}
	return nil
}

func (t *TelegramClient) sendSingleMessage(ctx context.Context, message string) error {
	body, err := json.Marshal(map[string]interface{}{
		"chat_id": t.chatID,
		"text":    message,
	})
	if err != nil {
		return errors.Wrap("telegram.sendSingleMessage", err)
	}

	url := fmt.Sprintf(t.baseURL, t.botToken, "sendMessage")

	var lastErr error
	for attempt := 1; attempt <= telegramMaxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(telegramRetryDelay):
			}
		}
		if lastErr = t.post(ctx, url, body); lastErr == nil {
			return nil
		}
	}
	return errors.Wrapf("telegram.sendSingleMessage", lastErr, "after %d attempts", telegramMaxRetries)
}

func (t *TelegramClient) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned %d", resp.StatusCode)
	}
	return nil
}

// splitMessage breaks a long message on line boundaries where possible.
func splitMessage(message string, limit int) []string {
	var parts []string
	for len(message) > limit {
		cut := limit
		if idx := lastNewlineBefore(message, limit); idx > 0 {
			cut = idx
		}
		parts = append(parts, message[:cut])
		message = message[cut:]
	}
	if message != "" {
		parts = append(parts, message)
	}
	return parts
}

func lastNewlineBefore(s string, limit int) int {
	for i := limit - 1; i > 0; i-- {
		if s[i] == '\n' {
			return i + 1
		}
	}
	return -1
}
