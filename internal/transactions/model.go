package transactions

import (
	"time"

	"github.com/google/uuid"
)

// Type splits cash movements into the two ledger directions.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Status tracks whether a transaction has been settled.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Valid reports whether s is a known transaction status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// Transaction is a single income or expense entry, optionally tied to a
// client and the subscription cycle it settles.
type Transaction struct {
	ID             uuid.UUID  `json:"id"`
	ClientID       *uuid.UUID `json:"client_id,omitempty"`
	SubscriptionID *uuid.UUID `json:"subscription_id,omitempty"`
	ClientName     string     `json:"client_name,omitempty"`
	Type           Type       `json:"type"`
	Amount         float64    `json:"amount"`
	Description    string     `json:"description"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Status         Status     `json:"status"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateTransactionRequest carries the payload for recording a transaction.
// DueDate uses the YYYY-MM-DD form.
type CreateTransactionRequest struct {
	ClientID       *uuid.UUID `json:"client_id,omitempty"`
	SubscriptionID *uuid.UUID `json:"subscription_id,omitempty"`
	Type           string     `json:"type" validate:"required,oneof=income expense"`
	Amount         float64    `json:"amount" validate:"gt=0"`
	Description    string     `json:"description" validate:"required,max=500"`
	DueDate        *string    `json:"due_date,omitempty"`
	Status         *string    `json:"status,omitempty" validate:"omitempty,oneof=pending paid"`
}

// UpdateTransactionRequest carries a partial update.
type UpdateTransactionRequest struct {
	Amount      *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	DueDate     *string  `json:"due_date,omitempty"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,oneof=pending paid"`
}

// ListTransactionsRequest filters the transaction listing.
type ListTransactionsRequest struct {
	ClientID       *uuid.UUID
	SubscriptionID *uuid.UUID
	Type           *Type
	Status         *Status
	Limit          int
	Offset         int
}

// Summary aggregates settled movement totals.
type Summary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}
