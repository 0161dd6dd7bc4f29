package settings

import "time"

// Settings holds the single-row automation configuration: SMTP credentials
// for billing emails and the webhook used to push WhatsApp messages.
type Settings struct {
	SMTPHost           string    `json:"smtp_host"`
	SMTPPort           int       `json:"smtp_port"`
	SMTPUser           string    `json:"smtp_user"`
	SMTPPass           string    `json:"smtp_pass"`
	WhatsAppWebhookURL string    `json:"whatsapp_webhook_url"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// EmailConfigured reports whether outbound email can be attempted.
func (s Settings) EmailConfigured() bool {
	return s.SMTPHost != "" && s.SMTPPort > 0
}

// WhatsAppConfigured reports whether the WhatsApp webhook can be called.
func (s Settings) WhatsAppConfigured() bool {
	return s.WhatsAppWebhookURL != ""
}

// UpdateSettingsRequest replaces the automation configuration.
type UpdateSettingsRequest struct {
	SMTPHost           string `json:"smtp_host" validate:"omitempty,max=255"`
	SMTPPort           int    `json:"smtp_port" validate:"gte=0,lte=65535"`
	SMTPUser           string `json:"smtp_user" validate:"omitempty,max=255"`
	SMTPPass           string `json:"smtp_pass" validate:"omitempty,max=255"`
	WhatsAppWebhookURL string `json:"whatsapp_webhook_url" validate:"omitempty,url"`
}
