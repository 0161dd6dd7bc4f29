package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines data access for the automation settings row.
type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s Settings) (*Settings, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Get returns the settings row, or zero-valued settings when the row was
// never saved.
func (r *repository) Get(ctx context.Context) (*Settings, error) {
	query := `
		SELECT smtp_host, smtp_port, smtp_user, smtp_pass, whatsapp_webhook_url, updated_at
		FROM automation_settings
		WHERE id = 1`

	var s Settings
	var host, user, pass, webhook pgtype.Text
	var port pgtype.Int4
	err := r.pool.QueryRow(ctx, query).Scan(&host, &port, &user, &pass, &webhook, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, err
	}
	s.SMTPHost = host.String
	s.SMTPPort = int(port.Int32)
	s.SMTPUser = user.String
	s.SMTPPass = pass.String
	s.WhatsAppWebhookURL = webhook.String
	return &s, nil
}

func (r *repository) Save(ctx context.Context, s Settings) (*Settings, error) {
	query := `
		INSERT INTO automation_settings (id, smtp_host, smtp_port, smtp_user, smtp_pass, whatsapp_webhook_url, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			smtp_host = EXCLUDED.smtp_host,
			smtp_port = EXCLUDED.smtp_port,
			smtp_user = EXCLUDED.smtp_user,
			smtp_pass = EXCLUDED.smtp_pass,
			whatsapp_webhook_url = EXCLUDED.whatsapp_webhook_url,
			updated_at = NOW()
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		s.SMTPHost, s.SMTPPort, s.SMTPUser, s.SMTPPass, s.WhatsAppWebhookURL,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
