package transactions

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryTransactionRepo struct {
	items map[uuid.UUID]Transaction
}

func newMemoryTransactionRepo() *memoryTransactionRepo {
	return &memoryTransactionRepo{items: make(map[uuid.UUID]Transaction)}
}

func (m *memoryTransactionRepo) Create(_ context.Context, t Transaction) (*Transaction, error) {
	t.ID = uuid.New()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	m.items[t.ID] = t
	return &t, nil
}

func (m *memoryTransactionRepo) Get(_ context.Context, id uuid.UUID) (*Transaction, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *memoryTransactionRepo) List(_ context.Context, req ListTransactionsRequest) ([]Transaction, error) {
	out := make([]Transaction, 0, len(m.items))
	for _, t := range m.items {
		if req.ClientID != nil && (t.ClientID == nil || *t.ClientID != *req.ClientID) {
			continue
		}
		if req.SubscriptionID != nil && (t.SubscriptionID == nil || *t.SubscriptionID != *req.SubscriptionID) {
			continue
		}
		if req.Type != nil && t.Type != *req.Type {
			continue
		}
		if req.Status != nil && t.Status != *req.Status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memoryTransactionRepo) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]Transaction, error) {
	return m.List(ctx, ListTransactionsRequest{SubscriptionID: &subscriptionID})
}

func (m *memoryTransactionRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	t, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	for col, val := range updates {
		switch col {
		case "amount":
			t.Amount = val.(float64)
		case "description":
			t.Description = val.(string)
		case "due_date":
			if val == nil {
				t.DueDate = nil
			} else {
				d := val.(time.Time)
				t.DueDate = &d
			}
		case "status":
			t.Status = Status(val.(string))
		case "paid_at":
			if val == nil {
				t.PaidAt = nil
			} else {
				p := val.(time.Time)
				t.PaidAt = &p
			}
		}
	}
	t.UpdatedAt = time.Now()
	m.items[id] = t
	return nil
}

func (m *memoryTransactionRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryTransactionRepo) Summarize(_ context.Context) (*Summary, error) {
	var s Summary
	for _, t := range m.items {
		if t.Status != StatusPaid {
			continue
		}
		switch t.Type {
		case TypeIncome:
			s.Income += t.Amount
		case TypeExpense:
			s.Expense += t.Amount
		}
	}
	s.Balance = s.Income - s.Expense
	return &s, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func TestCreateTransactionDefaultsPending(t *testing.T) {
	svc := NewService(testLogger(), newMemoryTransactionRepo(), nil)

	tx, err := svc.Create(context.Background(), CreateTransactionRequest{
		Type:        "income",
		Amount:      350,
		Description: "Website maintenance",
		DueDate:     strPtr("2026-09-05"),
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, tx.Status)
	require.Nil(t, tx.PaidAt)
	require.NotNil(t, tx.DueDate)
}

func TestCreateTransactionPaidStampsPaidAt(t *testing.T) {
	svc := NewService(testLogger(), newMemoryTransactionRepo(), nil)

	tx, err := svc.Create(context.Background(), CreateTransactionRequest{
		Type:        "expense",
		Amount:      90,
		Description: "Domain renewal",
		Status:      strPtr("paid"),
	})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, tx.Status)
	require.NotNil(t, tx.PaidAt)
}

func TestCreateTransactionRejectsBadInput(t *testing.T) {
	svc := NewService(testLogger(), newMemoryTransactionRepo(), nil)

	_, err := svc.Create(context.Background(), CreateTransactionRequest{
		Type: "transfer", Amount: 10, Description: "x",
	})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateTransactionRequest{
		Type: "income", Amount: 0, Description: "x",
	})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateTransactionRequest{
		Type: "income", Amount: 10,
	})
	require.Error(t, err)
}

func TestMarkPaidFiresReceiptOnce(t *testing.T) {
	repo := newMemoryTransactionRepo()
	var receipts []uuid.UUID
	svc := NewService(testLogger(), repo, func(_ context.Context, tx Transaction) {
		receipts = append(receipts, tx.ID)
	})

	tx, err := svc.Create(context.Background(), CreateTransactionRequest{
		Type: "income", Amount: 500, Description: "Retainer", DueDate: strPtr("2026-08-20"),
	})
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), tx.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	require.Equal(t, []uuid.UUID{tx.ID}, receipts)

	_, err = svc.MarkPaid(context.Background(), tx.ID)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
}

func TestMarkPaidSkipsReceiptForExpense(t *testing.T) {
	repo := newMemoryTransactionRepo()
	var receipts int
	svc := NewService(testLogger(), repo, func(_ context.Context, _ Transaction) { receipts++ })

	tx, err := svc.Create(context.Background(), CreateTransactionRequest{
		Type: "expense", Amount: 200, Description: "Hosting bill",
	})
	require.NoError(t, err)

	_, err = svc.MarkPaid(context.Background(), tx.ID)
	require.NoError(t, err)
	require.Zero(t, receipts)
}

func TestUpdateStatusMaintainsPaidAt(t *testing.T) {
	svc := NewService(testLogger(), newMemoryTransactionRepo(), nil)

	tx, err := svc.Create(context.Background(), CreateTransactionRequest{
		Type: "income", Amount: 120, Description: "SEO report",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), tx.ID, UpdateTransactionRequest{Status: strPtr("paid")})
	require.NoError(t, err)
	require.NotNil(t, updated.PaidAt)

	updated, err = svc.Update(context.Background(), tx.ID, UpdateTransactionRequest{Status: strPtr("pending")})
	require.NoError(t, err)
	require.Nil(t, updated.PaidAt)
}

func TestSummarizeCountsOnlySettled(t *testing.T) {
	svc := NewService(testLogger(), newMemoryTransactionRepo(), nil)

	_, err := svc.Create(context.Background(), CreateTransactionRequest{
		Type: "income", Amount: 1000, Description: "Retainer", Status: strPtr("paid"),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateTransactionRequest{
		Type: "expense", Amount: 300, Description: "Tools", Status: strPtr("paid"),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateTransactionRequest{
		Type: "income", Amount: 999, Description: "Unpaid invoice",
	})
	require.NoError(t, err)

	s, err := svc.Summarize(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 1000.0, s.Income, 1e-9)
	require.InDelta(t, 300.0, s.Expense, 1e-9)
	require.InDelta(t, 700.0, s.Balance, 1e-9)
}
