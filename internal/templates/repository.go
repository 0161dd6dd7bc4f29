package templates

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the template does not exist.
var ErrNotFound = errors.New("templates: not found")

// Repository defines data access for notification templates.
type Repository interface {
	Create(ctx context.Context, t Template) (*Template, error)
	Get(ctx context.Context, id uuid.UUID) (*Template, error)
	List(ctx context.Context, req ListTemplatesRequest) ([]Template, error)
	FindActive(ctx context.Context, channel Channel, trigger Trigger) (*Template, error)
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

const selectColumns = `
	id, channel, trigger_event, name, subject, content, is_active, created_at, updated_at`

func (r *repository) Create(ctx context.Context, t Template) (*Template, error) {
	query := `
		INSERT INTO notification_templates (channel, trigger_event, name, subject, content, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		string(t.Channel), string(t.Trigger), t.Name, t.Subject, t.Content, t.IsActive,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Template, error) {
	query := `SELECT ` + selectColumns + ` FROM notification_templates WHERE id = $1`

	tpl, err := scanTemplate(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

func (r *repository) List(ctx context.Context, req ListTemplatesRequest) ([]Template, error) {
	query := `SELECT ` + selectColumns + ` FROM notification_templates WHERE 1=1`

	args := []any{}
	argNum := 1
	if req.Channel != nil {
		query += fmt.Sprintf(" AND channel = $%d", argNum)
		args = append(args, string(*req.Channel))
		argNum++
	}
	if req.Trigger != nil {
		query += fmt.Sprintf(" AND trigger_event = $%d", argNum)
		args = append(args, string(*req.Trigger))
	}
	query += " ORDER BY channel, trigger_event, name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tpl)
	}
	return out, rows.Err()
}

func (r *repository) FindActive(ctx context.Context, channel Channel, trigger Trigger) (*Template, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM notification_templates
		WHERE channel = $1 AND trigger_event = $2 AND is_active
		ORDER BY updated_at DESC
		LIMIT 1`

	tpl, err := scanTemplate(r.pool.QueryRow(ctx, query, string(channel), string(trigger)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE notification_templates SET updated_at = NOW()"
	args := []any{}
	argNum := 1
	for _, col := range []string{"name", "subject", "content", "is_active"} {
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
	tag, err := r.pool.Exec(ctx, "DELETE FROM notification_templates WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTemplate(row pgx.Row) (*Template, error) {
	var t Template
	var channel, trigger string
	var subject pgtype.Text
	err := row.Scan(
		&t.ID, &channel, &trigger, &t.Name, &subject, &t.Content,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Channel = Channel(channel)
	t.Trigger = Trigger(trigger)
	if subject.Valid {
		s := subject.String
		t.Subject = &s
	}
	return &t, nil
}
