package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/robson-hennes/myfinai/internal/templates"
)

// Delivery outcomes recorded in the notification log.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// LogEntry is one attempted notification delivery.
type LogEntry struct {
	ID             uuid.UUID         `json:"id"`
	SubscriptionID *uuid.UUID        `json:"subscription_id,omitempty"`
	Channel        templates.Channel `json:"channel"`
	Trigger        templates.Trigger `json:"trigger"`
	Recipient      string            `json:"recipient"`
	Status         string            `json:"status"`
	Error          *string           `json:"error,omitempty"`
	SentAt         time.Time         `json:"sent_at"`
}

// LogRepository persists delivery attempts.
type LogRepository interface {
	Record(ctx context.Context, e LogEntry) error
	List(ctx context.Context, limit int) ([]LogEntry, error)
}

type logRepository struct {
	pool *pgxpool.Pool
}

// NewLogRepository constructs a PostgreSQL backed log repository.
func NewLogRepository(pool *pgxpool.Pool) LogRepository {
	return &logRepository{pool: pool}
}

func (r *logRepository) Record(ctx context.Context, e LogEntry) error {
	query := `
		INSERT INTO notification_log (subscription_id, channel, trigger_event, recipient, status, error, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := r.pool.Exec(ctx, query,
		e.SubscriptionID, string(e.Channel), string(e.Trigger), e.Recipient, e.Status, e.Error,
	)
	return err
}

func (r *logRepository) List(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, subscription_id, channel, trigger_event, recipient, status, error, sent_at
		FROM notification_log
		ORDER BY sent_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LogEntry
	for rows.Next() {
		var e LogEntry
		var channel, trigger string
		var errText pgtype.Text
		if err := rows.Scan(&e.ID, &e.SubscriptionID, &channel, &trigger, &e.Recipient, &e.Status, &errText, &e.SentAt); err != nil {
			return nil, err
		}
		e.Channel = templates.Channel(channel)
		e.Trigger = templates.Trigger(trigger)
		if errText.Valid {
			s := errText.String
			e.Error = &s
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
