package templates

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Service handles notification template business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new template.
func (s *Service) Create(ctx context.Context, req CreateTemplateRequest) (*Template, error) {
	channel := Channel(req.Channel)
	if !channel.Valid() {
		return nil, errors.New("templates: invalid channel")
	}
	trigger := Trigger(req.Trigger)
	if !trigger.Valid() {
		return nil, errors.New("templates: invalid trigger")
	}
	if req.Name == "" {
		return nil, errors.New("templates: name required")
	}
	if req.Content == "" {
		return nil, errors.New("templates: content required")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	tpl := Template{
		Channel:  channel,
		Trigger:  trigger,
		Name:     req.Name,
		Subject:  req.Subject,
		Content:  req.Content,
		IsActive: active,
	}
	created, err := s.repo.Create(ctx, tpl)
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return created, nil
}

// Get returns a single template.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Template, error) {
	return s.repo.Get(ctx, id)
}

// List returns templates matching the filter.
func (s *Service) List(ctx context.Context, req ListTemplatesRequest) ([]Template, error) {
	return s.repo.List(ctx, req)
}

// Update applies a partial update and returns the fresh record.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateTemplateRequest) (*Template, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		if *req.Name == "" {
			return nil, errors.New("templates: name cannot be empty")
		}
		updates["name"] = *req.Name
	}
	if req.Subject != nil {
		if *req.Subject == "" {
			updates["subject"] = nil
		} else {
			updates["subject"] = *req.Subject
		}
	}
	if req.Content != nil {
		if *req.Content == "" {
			return nil, errors.New("templates: content cannot be empty")
		}
		updates["content"] = *req.Content
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a template.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// FindActive looks up the active template for a channel and trigger.
func (s *Service) FindActive(ctx context.Context, channel Channel, trigger Trigger) (*Template, error) {
	return s.repo.FindActive(ctx, channel, trigger)
}
