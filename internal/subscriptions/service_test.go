package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/robson-hennes/myfinai/internal/billing"
)

type memorySubscriptionRepo struct {
	items map[uuid.UUID]Subscription
}

func newMemorySubscriptionRepo() *memorySubscriptionRepo {
	return &memorySubscriptionRepo{items: make(map[uuid.UUID]Subscription)}
}

func (m *memorySubscriptionRepo) Create(_ context.Context, sub Subscription) (*Subscription, error) {
	sub.ID = uuid.New()
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	m.items[sub.ID] = sub
	return &sub, nil
}

func (m *memorySubscriptionRepo) Get(_ context.Context, id uuid.UUID) (*Subscription, error) {
	sub, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sub, nil
}

func (m *memorySubscriptionRepo) List(_ context.Context, req ListSubscriptionsRequest) ([]Subscription, error) {
	out := make([]Subscription, 0, len(m.items))
	for _, sub := range m.items {
		if req.ClientID != nil && sub.ClientID != *req.ClientID {
			continue
		}
		if req.IsActive != nil && sub.IsActive != *req.IsActive {
			continue
		}
		out = append(out, sub)
	}
	return out, nil
}

func (m *memorySubscriptionRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	sub, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	for col, val := range updates {
		switch col {
		case "name":
			sub.Name = val.(string)
		case "amount":
			sub.Amount = val.(float64)
		case "recurrence":
			sub.Recurrence = billing.Recurrence(val.(string))
		case "next_billing_date":
			if val == nil {
				sub.NextBillingDate = nil
			} else {
				t := val.(time.Time)
				sub.NextBillingDate = &t
			}
		case "is_active":
			sub.IsActive = val.(bool)
		}
	}
	sub.UpdatedAt = time.Now()
	m.items[id] = sub
	return nil
}

func (m *memorySubscriptionRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func strPtr(s string) *string { return &s }

func TestCreateSubscriptionDefaultsActive(t *testing.T) {
	svc := NewService(newMemorySubscriptionRepo())

	sub, err := svc.Create(context.Background(), CreateSubscriptionRequest{
		ClientID:        uuid.New(),
		Name:            "Hosting",
		Amount:          1200,
		Recurrence:      "annual",
		NextBillingDate: strPtr("2026-09-15"),
	})
	require.NoError(t, err)
	require.True(t, sub.IsActive)
	require.Equal(t, billing.RecurrenceAnnual, sub.Recurrence)
	require.NotNil(t, sub.NextBillingDate)
	require.Equal(t, "2026-09-15", sub.NextBillingDate.Format("2006-01-02"))
	require.InDelta(t, 100.0, sub.MonthlyRevenue(), 1e-9)
}

func TestCreateSubscriptionRejectsBadInput(t *testing.T) {
	svc := NewService(newMemorySubscriptionRepo())

	_, err := svc.Create(context.Background(), CreateSubscriptionRequest{
		ClientID: uuid.New(), Name: "SEO", Amount: 100, Recurrence: "weekly",
	})
	require.ErrorIs(t, err, ErrInvalidRecurrence)

	_, err = svc.Create(context.Background(), CreateSubscriptionRequest{
		ClientID: uuid.New(), Amount: 100, Recurrence: "monthly",
	})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateSubscriptionRequest{
		ClientID: uuid.New(), Name: "SEO", Amount: -10, Recurrence: "monthly",
	})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateSubscriptionRequest{
		ClientID: uuid.New(), Name: "SEO", Amount: 100, Recurrence: "monthly",
		NextBillingDate: strPtr("15/09/2026"),
	})
	require.Error(t, err)
}

func TestUpdateSubscriptionPartial(t *testing.T) {
	repo := newMemorySubscriptionRepo()
	svc := NewService(repo)

	sub, err := svc.Create(context.Background(), CreateSubscriptionRequest{
		ClientID: uuid.New(), Name: "Social Media", Amount: 900, Recurrence: "quarterly",
		NextBillingDate: strPtr("2026-10-01"),
	})
	require.NoError(t, err)

	amount := 1500.0
	updated, err := svc.Update(context.Background(), sub.ID, UpdateSubscriptionRequest{Amount: &amount})
	require.NoError(t, err)
	require.Equal(t, 1500.0, updated.Amount)
	require.Equal(t, "Social Media", updated.Name)
	require.Equal(t, billing.RecurrenceQuarterly, updated.Recurrence)

	updated, err = svc.Update(context.Background(), sub.ID, UpdateSubscriptionRequest{NextBillingDate: strPtr("")})
	require.NoError(t, err)
	require.Nil(t, updated.NextBillingDate)

	_, err = svc.Update(context.Background(), sub.ID, UpdateSubscriptionRequest{Recurrence: strPtr("daily")})
	require.ErrorIs(t, err, ErrInvalidRecurrence)

	_, err = svc.Update(context.Background(), sub.ID, UpdateSubscriptionRequest{Name: strPtr("")})
	require.Error(t, err)
}

func TestTotalMonthlyRevenueSkipsInactive(t *testing.T) {
	repo := newMemorySubscriptionRepo()
	svc := NewService(repo)
	clientID := uuid.New()
	inactive := false

	_, err := svc.Create(context.Background(), CreateSubscriptionRequest{
		ClientID: clientID, Name: "Retainer", Amount: 1000, Recurrence: "monthly",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateSubscriptionRequest{
		ClientID: clientID, Name: "Audit", Amount: 600, Recurrence: "semiannual",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateSubscriptionRequest{
		ClientID: clientID, Name: "Setup", Amount: 5000, Recurrence: "one_time",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateSubscriptionRequest{
		ClientID: clientID, Name: "Paused", Amount: 400, Recurrence: "monthly", IsActive: &inactive,
	})
	require.NoError(t, err)

	total, err := svc.TotalMonthlyRevenue(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 1100.0, total, 1e-9)
}
