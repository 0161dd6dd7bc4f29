package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/robson-hennes/myfinai/internal/clients"
	jobmetrics "github.com/robson-hennes/myfinai/internal/jobs"
	"github.com/robson-hennes/myfinai/internal/notify"
	"github.com/robson-hennes/myfinai/internal/subscriptions"
	"github.com/robson-hennes/myfinai/internal/templates"
)

// SubscriptionGetter loads one subscription.
type SubscriptionGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*subscriptions.Subscription, error)
}

// ClientGetter loads one client.
type ClientGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*clients.Client, error)
}

// DispatchSender delivers a rendered notification.
type DispatchSender interface {
	Dispatch(ctx context.Context, req notify.Request) (*notify.Result, error)
}

// NotifyDispatchJob resolves a queued charge and hands it to the dispatcher.
type NotifyDispatchJob struct {
	Subs       SubscriptionGetter
	Clients    ClientGetter
	Dispatcher DispatchSender
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// NewNotifyDispatchJob initialises the delivery handler.
func NewNotifyDispatchJob(subs SubscriptionGetter, cls ClientGetter, d DispatchSender, logger *slog.Logger, metrics *jobmetrics.Metrics) *NotifyDispatchJob {
	return &NotifyDispatchJob{Subs: subs, Clients: cls, Dispatcher: d, Logger: logger, Metrics: metrics}
}

// Handle executes one queued delivery.
func (j *NotifyDispatchJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("notify dispatch: handler not configured")
	}
	var payload NotifyDispatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	trigger := templates.Trigger(payload.Trigger)
	if !trigger.Valid() {
		j.Logger.Warn("notify dispatch: unknown trigger", slog.String("trigger", payload.Trigger))
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskNotifyDispatch)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	sub, err := j.Subs.Get(ctx, payload.SubscriptionID)
	if err != nil {
		if errors.Is(err, subscriptions.ErrNotFound) {
			j.Logger.Warn("notify dispatch: subscription gone",
				slog.String("subscription_id", payload.SubscriptionID.String()))
			return asynq.SkipRetry
		}
		resultErr = err
		return resultErr
	}
	client, err := j.Clients.Get(ctx, sub.ClientID)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			j.Logger.Warn("notify dispatch: client gone",
				slog.String("client_id", sub.ClientID.String()))
			return asynq.SkipRetry
		}
		resultErr = err
		return resultErr
	}

	res, err := j.Dispatcher.Dispatch(ctx, notify.Request{
		SubscriptionID: sub.ID,
		ClientName:     client.DisplayName(),
		Email:          client.Email,
		Phone:          client.Phone,
		ServiceName:    sub.Name,
		Amount:         sub.Amount,
		DueDate:        sub.NextBillingDate,
		Trigger:        trigger,
	})
	if err != nil {
		resultErr = err
		return resultErr
	}

	j.Logger.Info("charge dispatched",
		slog.String("subscription_id", sub.ID.String()),
		slog.String("trigger", string(trigger)),
		slog.Int("sent", res.Sent),
		slog.Int("failed", res.Failed))
	return nil
}
