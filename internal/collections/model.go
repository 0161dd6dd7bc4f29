package collections

import (
	"time"

	"github.com/google/uuid"

	"github.com/robson-hennes/myfinai/internal/billing"
)

// Item is one row of the collections worklist: an active subscription with
// its current cycle classified against today.
type Item struct {
	SubscriptionID uuid.UUID          `json:"subscription_id"`
	ClientID       uuid.UUID          `json:"client_id"`
	ClientName     string             `json:"client_name"`
	ServiceName    string             `json:"service_name"`
	Amount         float64            `json:"amount"`
	AmountLabel    string             `json:"amount_label"`
	Recurrence     billing.Recurrence `json:"recurrence"`
	DueDate        time.Time          `json:"due_date"`
	Status         billing.Status     `json:"status"`
}
