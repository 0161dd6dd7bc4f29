package collections

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robson-hennes/myfinai/internal/billing"
	"github.com/robson-hennes/myfinai/internal/notify"
	"github.com/robson-hennes/myfinai/internal/subscriptions"
	"github.com/robson-hennes/myfinai/internal/templates"
	"github.com/robson-hennes/myfinai/internal/transactions"
)

// SubscriptionSource is the slice of the subscription service the worklist
// needs.
type SubscriptionSource interface {
	List(ctx context.Context, req subscriptions.ListSubscriptionsRequest) ([]subscriptions.Subscription, error)
	Get(ctx context.Context, id uuid.UUID) (*subscriptions.Subscription, error)
}

// TransactionSource provides the payment history of a subscription.
type TransactionSource interface {
	ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]transactions.Transaction, error)
}

// Notifier hands a charge off for asynchronous delivery.
type Notifier interface {
	EnqueueDispatch(ctx context.Context, subscriptionID uuid.UUID, trigger templates.Trigger) error
}

// Service builds the collections worklist and fires manual charges.
type Service struct {
	subs     SubscriptionSource
	txs      TransactionSource
	notifier Notifier
}

// NewService builds a Service instance.
func NewService(subs SubscriptionSource, txs TransactionSource, notifier Notifier) *Service {
	return &Service{subs: subs, txs: txs, notifier: notifier}
}

// Snapshot classifies every active subscription that has a billing date,
// without the worklist visibility filter. The daily scan consumes this.
func (s *Service) Snapshot(ctx context.Context, today time.Time) ([]Item, error) {
	active := true
	subs, err := s.subs.List(ctx, subscriptions.ListSubscriptionsRequest{IsActive: &active})
	if err != nil {
		return nil, fmt.Errorf("collections: list subscriptions: %w", err)
	}

	items := make([]Item, 0, len(subs))
	for _, sub := range subs {
		if sub.NextBillingDate == nil {
			continue
		}
		status, err := s.classify(ctx, sub, today)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{
			SubscriptionID: sub.ID,
			ClientID:       sub.ClientID,
			ClientName:     sub.ClientName,
			ServiceName:    sub.Name,
			Amount:         sub.Amount,
			AmountLabel:    billing.FormatBRL(sub.Amount),
			Recurrence:     sub.Recurrence,
			DueDate:        billing.Day(*sub.NextBillingDate),
			Status:         status,
		})
	}
	return items, nil
}

// Worklist returns the rows a collector acts on today. Charges due in a
// future month are hidden, and settled charges drop off once their month
// has passed.
func (s *Service) Worklist(ctx context.Context, today time.Time) ([]Item, error) {
	items, err := s.Snapshot(ctx, today)
	if err != nil {
		return nil, err
	}

	now := billing.Day(today)
	startOfNextMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)

	out := make([]Item, 0, len(items))
	for _, item := range items {
		if !item.DueDate.Before(startOfNextMonth) {
			continue
		}
		pastMonth := item.DueDate.Year() < now.Year() ||
			(item.DueDate.Year() == now.Year() && item.DueDate.Month() < now.Month())
		if pastMonth && item.Status.State == billing.CyclePaid {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// Notify fires a manual charge for one subscription. The trigger follows
// the cycle state: overdue charges send the overdue message, everything
// else the due one.
func (s *Service) Notify(ctx context.Context, subscriptionID uuid.UUID, today time.Time) (templates.Trigger, error) {
	sub, err := s.subs.Get(ctx, subscriptionID)
	if err != nil {
		return "", err
	}
	status, err := s.classify(ctx, *sub, today)
	if err != nil {
		return "", err
	}
	trigger := notify.TriggerFor(status.State)
	if err := s.notifier.EnqueueDispatch(ctx, subscriptionID, trigger); err != nil {
		return "", fmt.Errorf("collections: enqueue charge: %w", err)
	}
	return trigger, nil
}

func (s *Service) classify(ctx context.Context, sub subscriptions.Subscription, today time.Time) (billing.Status, error) {
	if sub.NextBillingDate == nil {
		return billing.Status{State: billing.CyclePending}, nil
	}
	history, err := s.txs.ListBySubscription(ctx, sub.ID)
	if err != nil {
		return billing.Status{}, fmt.Errorf("collections: payment history: %w", err)
	}
	payments := make([]billing.Payment, 0, len(history))
	for _, tx := range history {
		if tx.DueDate == nil {
			continue
		}
		payments = append(payments, billing.Payment{
			DueDate: *tx.DueDate,
			Paid:    tx.Status == transactions.StatusPaid,
		})
	}
	return billing.Classify(*sub.NextBillingDate, today, payments), nil
}
