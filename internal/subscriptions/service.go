package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robson-hennes/myfinai/internal/billing"
)

const dateLayout = "2006-01-02"

// ErrInvalidRecurrence rejects cadence values outside the closed enum.
var ErrInvalidRecurrence = errors.New("subscriptions: invalid recurrence")

// Service handles subscription business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new subscription for a client.
func (s *Service) Create(ctx context.Context, req CreateSubscriptionRequest) (*Subscription, error) {
	if req.ClientID == uuid.Nil {
		return nil, errors.New("subscriptions: client id required")
	}
	if req.Name == "" {
		return nil, errors.New("subscriptions: name required")
	}
	if req.Amount < 0 {
		return nil, errors.New("subscriptions: amount must not be negative")
	}
	recurrence := billing.Recurrence(req.Recurrence)
	if !recurrence.Valid() {
		return nil, ErrInvalidRecurrence
	}

	nextBilling, err := parseDate(req.NextBillingDate)
	if err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	sub := Subscription{
		ClientID:        req.ClientID,
		Name:            req.Name,
		Amount:          req.Amount,
		Recurrence:      recurrence,
		NextBillingDate: nextBilling,
		IsActive:        active,
	}
	created, err := s.repo.Create(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return created, nil
}

// Get returns a single subscription with its client name.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	return s.repo.Get(ctx, id)
}

// List returns subscriptions matching the filter.
func (s *Service) List(ctx context.Context, req ListSubscriptionsRequest) ([]Subscription, error) {
	return s.repo.List(ctx, req)
}

// Update applies a partial update and returns the fresh record.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateSubscriptionRequest) (*Subscription, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		if *req.Name == "" {
			return nil, errors.New("subscriptions: name cannot be empty")
		}
		updates["name"] = *req.Name
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			return nil, errors.New("subscriptions: amount must not be negative")
		}
		updates["amount"] = *req.Amount
	}
	if req.Recurrence != nil {
		recurrence := billing.Recurrence(*req.Recurrence)
		if !recurrence.Valid() {
			return nil, ErrInvalidRecurrence
		}
		updates["recurrence"] = string(recurrence)
	}
	if req.NextBillingDate != nil {
		if *req.NextBillingDate == "" {
			updates["next_billing_date"] = nil
		} else {
			t, err := parseDate(req.NextBillingDate)
			if err != nil {
				return nil, err
			}
			updates["next_billing_date"] = *t
		}
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a subscription.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// TotalMonthlyRevenue sums the MRR contribution of every active subscription.
func (s *Service) TotalMonthlyRevenue(ctx context.Context) (float64, error) {
	active := true
	subs, err := s.repo.List(ctx, ListSubscriptionsRequest{IsActive: &active})
	if err != nil {
		return 0, err
	}
	var total float64
	for _, sub := range subs {
		total += sub.MonthlyRevenue()
	}
	return total, nil
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return nil, fmt.Errorf("subscriptions: invalid date %q: %w", *raw, err)
	}
	return &t, nil
}

func recurrenceFromString(raw string) billing.Recurrence {
	return billing.Recurrence(raw)
}
