package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WhatsAppMessage is the payload posted to the automation webhook.
type WhatsAppMessage struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// WhatsAppSender delivers WhatsApp messages through a webhook.
type WhatsAppSender interface {
	Send(ctx context.Context, webhookURL string, msg WhatsAppMessage) error
}

type webhookSender struct {
	client *http.Client
}

// NewWhatsAppSender builds the webhook-backed sender. client may be nil.
func NewWhatsAppSender(client *http.Client) WhatsAppSender {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &webhookSender{client: client}
}

func (s *webhookSender) Send(ctx context.Context, webhookURL string, msg WhatsAppMessage) error {
	if webhookURL == "" {
		return fmt.Errorf("notify: whatsapp webhook not configured")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("notify: encode whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: whatsapp webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: whatsapp webhook returned %d", resp.StatusCode)
	}
	return nil
}
