package billing

import "time"

// CycleState classifies a subscription relative to its current billing cycle.
type CycleState string

const (
	CyclePaid    CycleState = "paid"
	CyclePending CycleState = "pending"
	CycleOverdue CycleState = "overdue"
)

// Payment is the slice of a ledger transaction the classifier needs: the due
// date that buckets it into a billing cycle and whether it settled.
type Payment struct {
	DueDate time.Time
	Paid    bool
}

// Status is the derived billing state of a subscription. It is never
// persisted; callers recompute it on every read.
type Status struct {
	State       CycleState `json:"state"`
	DaysOverdue int        `json:"days_overdue"`
}

// Day truncates t to midnight in its own location. Cycle comparisons are
// date-only, never timestamp-precise.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameCycle reports whether a transaction due date falls in the billing
// cycle identified by nextBilling. Cycles are (month, year) buckets; there is
// no stored link between a transaction and a cycle.
func SameCycle(dueDate, nextBilling time.Time) bool {
	return dueDate.Month() == nextBilling.Month() && dueDate.Year() == nextBilling.Year()
}

// Classify determines the billing state of a subscription due on nextBilling,
// as of today, given the transactions matched to it. A subscription due
// exactly today is pending, not overdue.
func Classify(nextBilling, today time.Time, payments []Payment) Status {
	due := Day(nextBilling)
	now := Day(today)

	hasPaid := false
	for _, p := range payments {
		if p.Paid && SameCycle(Day(p.DueDate), due) {
			hasPaid = true
			break
		}
	}

	switch {
	case hasPaid:
		return Status{State: CyclePaid}
	case due.Before(now):
		days := int(now.Sub(due).Hours() / 24)
		return Status{State: CycleOverdue, DaysOverdue: days}
	default:
		return Status{State: CyclePending}
	}
}
