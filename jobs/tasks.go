package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskNotifyDispatch delivers one charge notification.
	TaskNotifyDispatch = "notify:dispatch"
	// TaskBillingScan walks the active subscriptions once a day.
	TaskBillingScan = "billing:scan"
)

// NotifyDispatchPayload identifies the subscription to charge and which
// message to send.
type NotifyDispatchPayload struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	Trigger        string    `json:"trigger"`
}

// NewNotifyDispatchTask constructs the delivery task.
func NewNotifyDispatchTask(payload NotifyDispatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotifyDispatch, data), nil
}

// NewBillingScanTask constructs the daily scan task.
func NewBillingScanTask() *asynq.Task {
	return asynq.NewTask(TaskBillingScan, nil)
}
