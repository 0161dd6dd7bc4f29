package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the client does not exist.
var ErrNotFound = errors.New("clients: not found")

// Repository defines data access for clients.
type Repository interface {
	Create(ctx context.Context, c Client) (*Client, error)
	Get(ctx context.Context, id uuid.UUID) (*Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
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

func (r *repository) Create(ctx context.Context, c Client) (*Client, error) {
	query := `
		INSERT INTO clients (name, contact_name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, c.Name, c.ContactName, c.Email, c.Phone).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Client, error) {
	query := `
		SELECT id, name, contact_name, email, phone, created_at, updated_at
		FROM clients
		WHERE id = $1`

	var c Client
	var contactName, email, phone pgtype.Text
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &contactName, &email, &phone, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.ContactName = textPtr(contactName)
	c.Email = textPtr(email)
	c.Phone = textPtr(phone)
	return &c, nil
}

func (r *repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	where := ""
	args := []any{}
	if req.Search != "" {
		where = "WHERE name ILIKE $1 OR email ILIKE $1 OR contact_name ILIKE $1"
		args = append(args, "%"+req.Search+"%")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM clients " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, name, contact_name, email, phone, created_at, updated_at
		FROM clients ` + where + `
		ORDER BY name`
	argNum := len(args) + 1
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
		return nil, 0, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		var contactName, email, phone pgtype.Text
		if err := rows.Scan(&c.ID, &c.Name, &contactName, &email, &phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		c.ContactName = textPtr(contactName)
		c.Email = textPtr(email)
		c.Phone = textPtr(phone)
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE clients SET updated_at = NOW()"
	args := []any{}
	argNum := 1
	for _, col := range []string{"name", "contact_name", "email", "phone"} {
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
	tag, err := r.pool.Exec(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
