package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassifyDueYesterdayIsOverdue(t *testing.T) {
	today := date(2026, time.March, 10)
	st := Classify(date(2026, time.March, 9), today, nil)
	require.Equal(t, CycleOverdue, st.State)
	require.Equal(t, 1, st.DaysOverdue)
}

func TestClassifyDueTodayIsPending(t *testing.T) {
	today := date(2026, time.March, 10)
	st := Classify(date(2026, time.March, 10), today, nil)
	require.Equal(t, CyclePending, st.State)
	require.Equal(t, 0, st.DaysOverdue)
}

func TestClassifyFutureCycleIsPending(t *testing.T) {
	today := date(2026, time.March, 10)
	// A paid transaction from an older cycle must not mask a future due date.
	payments := []Payment{{DueDate: date(2026, time.February, 10), Paid: true}}
	st := Classify(date(2026, time.April, 10), today, payments)
	require.Equal(t, CyclePending, st.State)
	require.Equal(t, 0, st.DaysOverdue)
}

func TestClassifyPaidInSameCycle(t *testing.T) {
	today := date(2026, time.March, 10)
	payments := []Payment{{DueDate: date(2026, time.February, 20), Paid: true}}
	st := Classify(date(2026, time.February, 5), today, payments)
	require.Equal(t, CyclePaid, st.State)
	require.Equal(t, 0, st.DaysOverdue)
}

func TestClassifyPaidFlagRequired(t *testing.T) {
	today := date(2026, time.March, 10)
	payments := []Payment{{DueDate: date(2026, time.March, 5), Paid: false}}
	st := Classify(date(2026, time.March, 5), today, payments)
	require.Equal(t, CycleOverdue, st.State)
	require.Equal(t, 5, st.DaysOverdue)
}

func TestClassifyOtherCyclePaymentIgnored(t *testing.T) {
	today := date(2026, time.March, 10)
	payments := []Payment{{DueDate: date(2026, time.January, 5), Paid: true}}
	st := Classify(date(2026, time.February, 5), today, payments)
	require.Equal(t, CycleOverdue, st.State)
}

func TestClassifyStripsTimeOfDay(t *testing.T) {
	today := time.Date(2026, time.March, 10, 23, 59, 0, 0, time.UTC)
	due := time.Date(2026, time.March, 10, 1, 0, 0, 0, time.UTC)
	st := Classify(due, today, nil)
	require.Equal(t, CyclePending, st.State)
}

func TestClassifyIsIdempotent(t *testing.T) {
	today := date(2026, time.March, 10)
	due := date(2026, time.February, 1)
	payments := []Payment{{DueDate: date(2026, time.February, 3), Paid: false}}
	first := Classify(due, today, payments)
	second := Classify(due, today, payments)
	require.Equal(t, first, second)
}

func TestSameCycle(t *testing.T) {
	require.True(t, SameCycle(date(2026, time.May, 1), date(2026, time.May, 31)))
	require.False(t, SameCycle(date(2026, time.May, 1), date(2026, time.June, 1)))
	require.False(t, SameCycle(date(2025, time.May, 1), date(2026, time.May, 1)))
}
