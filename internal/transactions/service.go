package transactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// ReceiptHook is called after a transaction settles so a payment receipt
// can be sent out of band.
type ReceiptHook func(ctx context.Context, tx Transaction)

// Service handles transaction business logic.
type Service struct {
	logger  *slog.Logger
	repo    Repository
	receipt ReceiptHook
}

// NewService builds a Service instance. hook may be nil.
func NewService(logger *slog.Logger, repo Repository, hook ReceiptHook) *Service {
	return &Service{logger: logger, repo: repo, receipt: hook}
}

// Create records a new transaction. Status defaults to pending; creating a
// transaction already marked paid stamps paid_at.
func (s *Service) Create(ctx context.Context, req CreateTransactionRequest) (*Transaction, error) {
	txType := Type(req.Type)
	if !txType.Valid() {
		return nil, errors.New("transactions: invalid type")
	}
	if req.Amount <= 0 {
		return nil, errors.New("transactions: amount must be positive")
	}
	if req.Description == "" {
		return nil, errors.New("transactions: description required")
	}

	status := StatusPending
	if req.Status != nil {
		status = Status(*req.Status)
		if !status.Valid() {
			return nil, errors.New("transactions: invalid status")
		}
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	tx := Transaction{
		ClientID:       req.ClientID,
		SubscriptionID: req.SubscriptionID,
		Type:           txType,
		Amount:         req.Amount,
		Description:    req.Description,
		DueDate:        dueDate,
		Status:         status,
	}
	if status == StatusPaid {
		now := time.Now()
		tx.PaidAt = &now
	}
	created, err := s.repo.Create(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return created, nil
}

// Get returns a single transaction.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.Get(ctx, id)
}

// List returns transactions matching the filter.
func (s *Service) List(ctx context.Context, req ListTransactionsRequest) ([]Transaction, error) {
	return s.repo.List(ctx, req)
}

// ListBySubscription returns every transaction tied to a subscription,
// newest cycle first.
func (s *Service) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]Transaction, error) {
	return s.repo.ListBySubscription(ctx, subscriptionID)
}

// Update applies a partial update and returns the fresh record. Flipping
// status maintains paid_at accordingly.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateTransactionRequest) (*Transaction, error) {
	updates := make(map[string]any)
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, errors.New("transactions: amount must be positive")
		}
		updates["amount"] = *req.Amount
	}
	if req.Description != nil {
		if *req.Description == "" {
			return nil, errors.New("transactions: description cannot be empty")
		}
		updates["description"] = *req.Description
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			updates["due_date"] = nil
		} else {
			t, err := parseDate(req.DueDate)
			if err != nil {
				return nil, err
			}
			updates["due_date"] = *t
		}
	}
	if req.Status != nil {
		status := Status(*req.Status)
		if !status.Valid() {
			return nil, errors.New("transactions: invalid status")
		}
		updates["status"] = string(status)
		if status == StatusPaid {
			updates["paid_at"] = time.Now()
		} else {
			updates["paid_at"] = nil
		}
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a transaction.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// MarkPaid settles a pending transaction and fires the receipt hook.
// Settling an already-paid transaction is a no-op.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	tx, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.Status == StatusPaid {
		return tx, nil
	}
	now := time.Now()
	updates := map[string]any{
		"status":  string(StatusPaid),
		"paid_at": now,
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}
	tx, err = s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.receipt != nil && tx.Type == TypeIncome {
		s.receipt(ctx, *tx)
	}
	return tx, nil
}

// Summarize aggregates settled income, expense and the resulting balance.
func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	return s.repo.Summarize(ctx)
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return nil, fmt.Errorf("transactions: invalid date %q: %w", *raw, err)
	}
	return &t, nil
}
