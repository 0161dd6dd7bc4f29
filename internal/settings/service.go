package settings

import (
	"context"
	"fmt"
)

// Service handles automation settings access.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the current automation settings.
func (s *Service) Get(ctx context.Context) (*Settings, error) {
	return s.repo.Get(ctx)
}

// Update replaces the automation settings.
func (s *Service) Update(ctx context.Context, req UpdateSettingsRequest) (*Settings, error) {
	saved, err := s.repo.Save(ctx, Settings{
		SMTPHost:           req.SMTPHost,
		SMTPPort:           req.SMTPPort,
		SMTPUser:           req.SMTPUser,
		SMTPPass:           req.SMTPPass,
		WhatsAppWebhookURL: req.WhatsAppWebhookURL,
	})
	if err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	return saved, nil
}
