package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/robson-hennes/myfinai/internal/billing"
	"github.com/robson-hennes/myfinai/internal/collections"
	jobmetrics "github.com/robson-hennes/myfinai/internal/jobs"
	"github.com/robson-hennes/myfinai/internal/notify"
	"github.com/robson-hennes/myfinai/internal/templates"
)

// ChargeSource provides the classified subscription snapshot.
type ChargeSource interface {
	Snapshot(ctx context.Context, today time.Time) ([]collections.Item, error)
}

// ChargeEnqueuer queues a single charge delivery.
type ChargeEnqueuer interface {
	EnqueueDispatch(ctx context.Context, subscriptionID uuid.UUID, trigger templates.Trigger) error
}

// BillingScanJob walks the active subscriptions once a day and queues the
// scheduled reminders, due notices and overdue follow-ups.
type BillingScanJob struct {
	Charges  ChargeSource
	Enqueuer ChargeEnqueuer
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewBillingScanJob initialises the daily scan handler.
func NewBillingScanJob(charges ChargeSource, enqueuer ChargeEnqueuer, logger *slog.Logger, metrics *jobmetrics.Metrics) *BillingScanJob {
	return &BillingScanJob{
		Charges:  charges,
		Enqueuer: enqueuer,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the scan.
func (j *BillingScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil {
		return errors.New("billing scan: handler not configured")
	}

	tracker := j.Metrics.Track(TaskBillingScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	today := billing.Day(j.clock())
	items, err := j.Charges.Snapshot(ctx, today)
	if err != nil {
		resultErr = err
		return resultErr
	}

	queued := 0
	for _, item := range items {
		daysUntilDue := int(item.DueDate.Sub(today).Hours() / 24)
		trigger, fire := notify.ScheduledTrigger(item.Status, daysUntilDue)
		if !fire {
			continue
		}
		if err := j.Enqueuer.EnqueueDispatch(ctx, item.SubscriptionID, trigger); err != nil {
			j.Logger.Error("billing scan: enqueue charge",
				slog.String("subscription_id", item.SubscriptionID.String()),
				slog.Any("error", err))
			resultErr = err
			continue
		}
		j.Metrics.AddEnqueued(string(trigger), 1)
		queued++
	}

	j.Logger.Info("billing scan finished",
		slog.Int("subscriptions", len(items)),
		slog.Int("queued", queued))
	return resultErr
}
