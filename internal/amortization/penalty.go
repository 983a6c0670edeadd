package amortization

import (
	"time"

	"github.com/shopspring/decimal"
)

// OverduePenalty computes the late fee for a single overdue installment:
// a daily percentage of the installment's total EMI amount, accrued per
// whole day past the due date and rounded to 2 decimal places, half up.
// Zero or negative days overdue yield a zero penalty.
func OverduePenalty(emiTotal decimal.Decimal, daysOverdue int, dailyRatePct decimal.Decimal) decimal.Decimal {
	if daysOverdue <= 0 {
		return decimal.Zero
	}
	return emiTotal.
		Mul(dailyRatePct).
		Div(hundred).
		Mul(decimal.NewFromInt(int64(daysOverdue))).
		Round(2)
}

// DaysOverdue returns the number of whole days now is past due, or 0 when
// the installment is not yet due.
func DaysOverdue(due, now time.Time) int {
	if !now.After(due) {
		return 0
	}
	return int(now.Sub(due).Hours() / 24)
}
