package transactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the transaction does not exist.
var ErrNotFound = errors.New("transactions: not found")

// Repository defines data access for transactions.
type Repository interface {
	Create(ctx context.Context, t Transaction) (*Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (*Transaction, error)
	List(ctx context.Context, req ListTransactionsRequest) ([]Transaction, error)
	ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]Transaction, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	Summarize(ctx context.Context) (*Summary, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, t Transaction) (*Transaction, error) {
	query := `
		INSERT INTO transactions (client_id, subscription_id, type, amount, description, due_date, status, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		t.ClientID, t.SubscriptionID, string(t.Type), t.Amount, t.Description,
		t.DueDate, string(t.Status), t.PaidAt,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const selectColumns = `
	t.id, t.client_id, t.subscription_id, COALESCE(c.name, ''), t.type, t.amount,
	t.description, t.due_date, t.status, t.paid_at, t.created_at, t.updated_at`

const fromClause = `
	FROM transactions t
	LEFT JOIN clients c ON c.id = t.client_id`

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	query := `SELECT ` + selectColumns + fromClause + ` WHERE t.id = $1`

	tx, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (r *repository) List(ctx context.Context, req ListTransactionsRequest) ([]Transaction, error) {
	query := `SELECT ` + selectColumns + fromClause + ` WHERE 1=1`

	args := []any{}
	argNum := 1
	if req.ClientID != nil {
		query += fmt.Sprintf(" AND t.client_id = $%d", argNum)
		args = append(args, *req.ClientID)
		argNum++
	}
	if req.SubscriptionID != nil {
		query += fmt.Sprintf(" AND t.subscription_id = $%d", argNum)
		args = append(args, *req.SubscriptionID)
		argNum++
	}
	if req.Type != nil {
		query += fmt.Sprintf(" AND t.type = $%d", argNum)
		args = append(args, string(*req.Type))
		argNum++
	}
	if req.Status != nil {
		query += fmt.Sprintf(" AND t.status = $%d", argNum)
		args = append(args, string(*req.Status))
		argNum++
	}
	query += " ORDER BY t.due_date DESC NULLS LAST, t.created_at DESC"
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, req.Limit)
		argNum++
	}
	if req.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, req.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tx)
	}
	return out, rows.Err()
}

func (r *repository) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]Transaction, error) {
	query := `SELECT ` + selectColumns + fromClause + `
		WHERE t.subscription_id = $1
		ORDER BY t.due_date DESC NULLS LAST`

	rows, err := r.pool.Query(ctx, query, subscriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tx)
	}
	return out, rows.Err()
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE transactions SET updated_at = NOW()"
	args := []any{}
	argNum := 1
	for _, col := range []string{"amount", "description", "due_date", "status", "paid_at"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argNum)
			args = append(args, v)
			argNum++
		}
	}
	query += fmt.Sprintf(" WHERE id = $%d", argNum)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM transactions WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Summarize(ctx context.Context) (*Summary, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income' AND status = 'paid'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense' AND status = 'paid'), 0)
		FROM transactions`

	var s Summary
	if err := r.pool.QueryRow(ctx, query).Scan(&s.Income, &s.Expense); err != nil {
		return nil, err
	}
	s.Balance = s.Income - s.Expense
	return &s, nil
}

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	var txType, status string
	var dueDate pgtype.Date
	var paidAt pgtype.Timestamptz
	err := row.Scan(
		&t.ID, &t.ClientID, &t.SubscriptionID, &t.ClientName, &txType, &t.Amount,
		&t.Description, &dueDate, &status, &paidAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Type = Type(txType)
	t.Status = Status(status)
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	if paidAt.Valid {
		p := paidAt.Time
		t.PaidAt = &p
	}
	return &t, nil
}
