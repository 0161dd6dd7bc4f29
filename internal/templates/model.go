package templates

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Channel is the delivery medium of a notification template.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelWhatsApp
}

// Trigger is the billing event a template answers to.
type Trigger string

const (
	TriggerReminder Trigger = "reminder"
	TriggerDue      Trigger = "due"
	TriggerOverdue  Trigger = "overdue"
	TriggerReceipt  Trigger = "receipt"
)

// Valid reports whether t is a known trigger.
func (t Trigger) Valid() bool {
	switch t {
	case TriggerReminder, TriggerDue, TriggerOverdue, TriggerReceipt:
		return true
	}
	return false
}

// Placeholders recognized inside template bodies and subjects.
const (
	PlaceholderClient      = "{{cliente}}"
	PlaceholderService     = "{{servico}}"
	PlaceholderAmount      = "{{valor}}"
	PlaceholderDueDate     = "{{vencimento}}"
	PlaceholderPaymentLink = "{{link_pagamento}}"
)

// Vars carries the values substituted into a template.
type Vars struct {
	Client      string
	Service     string
	Amount      string
	DueDate     string
	PaymentLink string
}

// Template is a reusable notification message with placeholders.
type Template struct {
	ID        uuid.UUID `json:"id"`
	Channel   Channel   `json:"channel"`
	Trigger   Trigger   `json:"trigger"`
	Name      string    `json:"name"`
	Subject   *string   `json:"subject,omitempty"`
	Content   string    `json:"content"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Render substitutes the placeholders in s. Unknown placeholders are left
// untouched.
func Render(s string, vars Vars) string {
	return strings.NewReplacer(
		PlaceholderClient, vars.Client,
		PlaceholderService, vars.Service,
		PlaceholderAmount, vars.Amount,
		PlaceholderDueDate, vars.DueDate,
		PlaceholderPaymentLink, vars.PaymentLink,
	).Replace(s)
}

// CreateTemplateRequest carries the payload for creating a template.
type CreateTemplateRequest struct {
	Channel  string  `json:"channel" validate:"required,oneof=email whatsapp"`
	Trigger  string  `json:"trigger" validate:"required,oneof=reminder due overdue receipt"`
	Name     string  `json:"name" validate:"required,max=200"`
	Subject  *string `json:"subject,omitempty" validate:"omitempty,max=300"`
	Content  string  `json:"content" validate:"required"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// UpdateTemplateRequest carries a partial update.
type UpdateTemplateRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Subject  *string `json:"subject,omitempty" validate:"omitempty,max=300"`
	Content  *string `json:"content,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ListTemplatesRequest filters the template listing.
type ListTemplatesRequest struct {
	Channel *Channel
	Trigger *Trigger
}
