package subscriptions

import (
	"time"

	"github.com/google/uuid"

	"github.com/robson-hennes/myfinai/internal/billing"
)

// Subscription is a recurring (or one-off) service sold to a client. The
// next billing date identifies the cycle transactions are matched against.
type Subscription struct {
	ID              uuid.UUID          `json:"id"`
	ClientID        uuid.UUID          `json:"client_id"`
	ClientName      string             `json:"client_name,omitempty"`
	Name            string             `json:"name"`
	Amount          float64            `json:"amount"`
	Recurrence      billing.Recurrence `json:"recurrence"`
	NextBillingDate *time.Time         `json:"next_billing_date,omitempty"`
	IsActive        bool               `json:"is_active"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// MonthlyRevenue is the subscription's MRR contribution.
func (s Subscription) MonthlyRevenue() float64 {
	return billing.MonthlyRevenue(s.Amount, s.Recurrence)
}

// CreateSubscriptionRequest carries the payload for creating a subscription.
// NextBillingDate uses the YYYY-MM-DD form.
type CreateSubscriptionRequest struct {
	ClientID        uuid.UUID `json:"client_id" validate:"required"`
	Name            string    `json:"name" validate:"required,max=200"`
	Amount          float64   `json:"amount" validate:"gte=0"`
	Recurrence      string    `json:"recurrence" validate:"required"`
	NextBillingDate *string   `json:"next_billing_date,omitempty"`
	IsActive        *bool     `json:"is_active,omitempty"`
}

// UpdateSubscriptionRequest carries a partial update.
type UpdateSubscriptionRequest struct {
	Name            *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Amount          *float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Recurrence      *string  `json:"recurrence,omitempty"`
	NextBillingDate *string  `json:"next_billing_date,omitempty"`
	IsActive        *bool    `json:"is_active,omitempty"`
}

// ListSubscriptionsRequest filters the subscription listing.
type ListSubscriptionsRequest struct {
	ClientID *uuid.UUID
	IsActive *bool
	Limit    int
	Offset   int
}
