package subscriptions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the subscription does not exist.
var ErrNotFound = errors.New("subscriptions: not found")

// Repository defines data access for subscriptions.
type Repository interface {
	Create(ctx context.Context, s Subscription) (*Subscription, error)
	Get(ctx context.Context, id uuid.UUID) (*Subscription, error)
	List(ctx context.Context, req ListSubscriptionsRequest) ([]Subscription, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, s Subscription) (*Subscription, error) {
	query := `
		INSERT INTO subscriptions (client_id, name, amount, recurrence, next_billing_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		s.ClientID, s.Name, s.Amount, string(s.Recurrence), s.NextBillingDate, s.IsActive,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const selectColumns = `
	s.id, s.client_id, c.name, s.name, s.amount, s.recurrence,
	s.next_billing_date, s.is_active, s.created_at, s.updated_at`

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM subscriptions s
		JOIN clients c ON c.id = s.client_id
		WHERE s.id = $1`

	sub, err := scanSubscription(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *repository) List(ctx context.Context, req ListSubscriptionsRequest) ([]Subscription, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM subscriptions s
		JOIN clients c ON c.id = s.client_id
		WHERE 1=1`

	args := []any{}
	argNum := 1
	if req.ClientID != nil {
		query += fmt.Sprintf(" AND s.client_id = $%d", argNum)
		args = append(args, *req.ClientID)
		argNum++
	}
	if req.IsActive != nil {
		query += fmt.Sprintf(" AND s.is_active = $%d", argNum)
		args = append(args, *req.IsActive)
		argNum++
	}
	query += " ORDER BY c.name, s.name"
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

	var out []Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sub)
	}
	return out, rows.Err()
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE subscriptions SET updated_at = NOW()"
	args := []any{}
	argNum := 1
	for _, col := range []string{"name", "amount", "recurrence", "next_billing_date", "is_active"} {
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
	tag, err := r.pool.Exec(ctx, "DELETE FROM subscriptions WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSubscription(row pgx.Row) (*Subscription, error) {
	var s Subscription
	var recurrence string
	var nextBilling pgtype.Date
	err := row.Scan(
		&s.ID, &s.ClientID, &s.ClientName, &s.Name, &s.Amount, &recurrence,
		&nextBilling, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Recurrence = recurrenceFromString(recurrence)
	if nextBilling.Valid {
		t := nextBilling.Time
		s.NextBillingDate = &t
	}
	return &s, nil
}
