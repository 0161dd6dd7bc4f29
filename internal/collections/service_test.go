package collections

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/robson-hennes/myfinai/internal/billing"
	"github.com/robson-hennes/myfinai/internal/subscriptions"
	"github.com/robson-hennes/myfinai/internal/templates"
	"github.com/robson-hennes/myfinai/internal/transactions"
)

type fakeSubs struct {
	items []subscriptions.Subscription
}

func (f *fakeSubs) List(_ context.Context, req subscriptions.ListSubscriptionsRequest) ([]subscriptions.Subscription, error) {
	out := []subscriptions.Subscription{}
	for _, s := range f.items {
		if req.IsActive != nil && s.IsActive != *req.IsActive {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSubs) Get(_ context.Context, id uuid.UUID) (*subscriptions.Subscription, error) {
	for _, s := range f.items {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, subscriptions.ErrNotFound
}

type fakeTxs struct {
	bySub map[uuid.UUID][]transactions.Transaction
}

func (f *fakeTxs) ListBySubscription(_ context.Context, id uuid.UUID) ([]transactions.Transaction, error) {
	return f.bySub[id], nil
}

type fakeNotifier struct {
	calls []templates.Trigger
}

func (f *fakeNotifier) EnqueueDispatch(_ context.Context, _ uuid.UUID, trigger templates.Trigger) error {
	f.calls = append(f.calls, trigger)
	return nil
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func sub(name string, due *time.Time, active bool) subscriptions.Subscription {
	return subscriptions.Subscription{
		ID:              uuid.New(),
		ClientID:        uuid.New(),
		ClientName:      "Cliente " + name,
		Name:            name,
		Amount:          500,
		Recurrence:      billing.RecurrenceMonthly,
		NextBillingDate: due,
		IsActive:        active,
	}
}

func TestWorklistHidesFutureMonths(t *testing.T) {
	today := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	thisMonth := sub("Hosting", datePtr(2026, 8, 30), true)
	nextMonth := sub("SEO", datePtr(2026, 9, 5), true)
	noDate := sub("Avulso", nil, true)
	inactive := sub("Pausado", datePtr(2026, 8, 10), false)

	svc := NewService(
		&fakeSubs{items: []subscriptions.Subscription{thisMonth, nextMonth, noDate, inactive}},
		&fakeTxs{bySub: map[uuid.UUID][]transactions.Transaction{}},
		&fakeNotifier{},
	)

	items, err := svc.Worklist(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, thisMonth.ID, items[0].SubscriptionID)
	require.Equal(t, billing.CyclePending, items[0].Status.State)
	require.Equal(t, "R$ 500,00", items[0].AmountLabel)
}

func TestWorklistDropsSettledPastMonths(t *testing.T) {
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	paidJuly := sub("Design", datePtr(2026, 7, 10), true)
	unpaidJuly := sub("Consultoria", datePtr(2026, 7, 10), true)
	paidAugust := sub("Hosting", datePtr(2026, 8, 10), true)

	txs := &fakeTxs{bySub: map[uuid.UUID][]transactions.Transaction{
		paidJuly.ID: {{
			DueDate: datePtr(2026, 7, 10),
			Status:  transactions.StatusPaid,
		}},
		paidAugust.ID: {{
			DueDate: datePtr(2026, 8, 10),
			Status:  transactions.StatusPaid,
		}},
	}}

	svc := NewService(
		&fakeSubs{items: []subscriptions.Subscription{paidJuly, unpaidJuly, paidAugust}},
		txs,
		&fakeNotifier{},
	)

	items, err := svc.Worklist(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := map[uuid.UUID]Item{}
	for _, item := range items {
		byID[item.SubscriptionID] = item
	}
	require.NotContains(t, byID, paidJuly.ID)
	require.Equal(t, billing.CycleOverdue, byID[unpaidJuly.ID].Status.State)
	require.Equal(t, 49, byID[unpaidJuly.ID].Status.DaysOverdue)
	require.Equal(t, billing.CyclePaid, byID[paidAugust.ID].Status.State)
}

func TestNotifyPicksTriggerFromCycleState(t *testing.T) {
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	overdue := sub("Atrasado", datePtr(2026, 8, 20), true)
	pending := sub("Em dia", datePtr(2026, 8, 30), true)

	notifier := &fakeNotifier{}
	svc := NewService(
		&fakeSubs{items: []subscriptions.Subscription{overdue, pending}},
		&fakeTxs{bySub: map[uuid.UUID][]transactions.Transaction{}},
		notifier,
	)

	trigger, err := svc.Notify(context.Background(), overdue.ID, today)
	require.NoError(t, err)
	require.Equal(t, templates.TriggerOverdue, trigger)

	trigger, err = svc.Notify(context.Background(), pending.ID, today)
	require.NoError(t, err)
	require.Equal(t, templates.TriggerDue, trigger)

	require.Equal(t, []templates.Trigger{templates.TriggerOverdue, templates.TriggerDue}, notifier.calls)
}

func TestNotifyUnknownSubscription(t *testing.T) {
	svc := NewService(&fakeSubs{}, &fakeTxs{}, &fakeNotifier{})
	_, err := svc.Notify(context.Background(), uuid.New(), time.Now())
	require.ErrorIs(t, err, subscriptions.ErrNotFound)
}
