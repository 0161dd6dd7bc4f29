// Package billing holds the pure revenue and billing-cycle calculations
// shared by the dashboard, the collections worklist and the notification
// dispatcher.
package billing

// Recurrence enumerates the billing cadence of a subscription.
type Recurrence string

const (
	RecurrenceMonthly     Recurrence = "monthly"
	RecurrenceQuarterly   Recurrence = "quarterly"
	RecurrenceSemiannual  Recurrence = "semiannual"
	RecurrenceAnnual      Recurrence = "annual"
	RecurrenceOneTime     Recurrence = "one_time"
	RecurrenceInstallment Recurrence = "installment"
)

// Months returns the length of the billing period in months, or 0 for
// cadences that do not recur (one_time, installment, unknown values).
func (r Recurrence) Months() int {
	switch r {
	case RecurrenceMonthly:
		return 1
	case RecurrenceQuarterly:
		return 3
	case RecurrenceSemiannual:
		return 6
	case RecurrenceAnnual:
		return 12
	default:
		return 0
	}
}

// Valid reports whether r is one of the known cadence values.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceMonthly, RecurrenceQuarterly, RecurrenceSemiannual,
		RecurrenceAnnual, RecurrenceOneTime, RecurrenceInstallment:
		return true
	}
	return false
}

// MonthlyRevenue normalizes a subscription price to its monthly-equivalent
// contribution (MRR). Non-positive amounts and non-recurring cadences
// contribute nothing.
func MonthlyRevenue(amount float64, r Recurrence) float64 {
	if amount <= 0 {
		return 0
	}
	months := r.Months()
	if months == 0 {
		return 0
	}
	return amount / float64(months)
}
