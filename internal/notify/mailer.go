package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/robson-hennes/myfinai/internal/settings"
)

// Email is an outbound message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers billing emails.
type Mailer interface {
	Send(ctx context.Context, cfg settings.Settings, msg Email) error
}

type smtpMailer struct{}

// NewSMTPMailer builds the SMTP-backed mailer. Credentials come from the
// automation settings at send time so edits take effect immediately.
func NewSMTPMailer() Mailer {
	return smtpMailer{}
}

func (smtpMailer) Send(_ context.Context, cfg settings.Settings, msg Email) error {
	if !cfg.EmailConfigured() {
		return fmt.Errorf("notify: smtp not configured")
	}

	sender := cfg.SMTPUser
	if sender == "" {
		sender = "no-reply@localhost"
	}

	var auth smtp.Auth
	if cfg.SMTPUser != "" && cfg.SMTPPass != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	payload := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, msg.To, msg.Subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
			msg.Body,
	)

	if err := smtp.SendMail(addr, auth, sender, []string{msg.To}, payload); err != nil {
		return fmt.Errorf("notify: smtp send: %w", err)
	}
	return nil
}
