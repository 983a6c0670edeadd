// Package amortization computes EMI schedules for fixed-rate annuity loans.
// All functions are pure: identical inputs always produce identical output.
package amortization

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	one        = decimal.NewFromInt(1)
	hundred    = decimal.NewFromInt(100)
	twelve     = decimal.NewFromInt(12)
	maxRatePct = decimal.NewFromInt(100)
)

// ScheduleItem is one installment of an EMI schedule.
type ScheduleItem struct {
	EmiNumber          int             `json:"emi_number"` // 1-indexed
	DueDate            time.Time       `json:"due_date"`
	PrincipalComponent decimal.Decimal `json:"principal_component"`
	InterestComponent  decimal.Decimal `json:"interest_component"`
	TotalEmiAmount     decimal.Decimal `json:"total_emi_amount"`
	PrincipalRemaining decimal.Decimal `json:"principal_remaining_after_payment"`
}

// GenerateSchedule computes a level-payment amortization schedule.
//
//	monthlyRate = annualRatePct / 12 / 100
//	emi         = P * r * (1+r)^n / ((1+r)^n - 1)
//
// Monetary values are rounded to 2 decimal places, half up. The final
// installment's principal component is forced to the remaining balance so
// the principal components always sum to exactly the original principal;
// the rounding difference lands in the last EMI. Installment i falls due
// startDate + i months.
func GenerateSchedule(principal, annualRatePct decimal.Decimal, tenureMonths int, startDate time.Time) ([]ScheduleItem, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("principal must be positive, got %s", principal)
	}
	if annualRatePct.LessThanOrEqual(decimal.Zero) || annualRatePct.GreaterThan(maxRatePct) {
		return nil, fmt.Errorf("annual rate must be in (0, 100], got %s", annualRatePct)
	}
	if tenureMonths < 1 {
		return nil, fmt.Errorf("tenure must be at least 1 month, got %d", tenureMonths)
	}

	monthlyRate := annualRatePct.Div(twelve).Div(hundred)

	// emi = P * r * (1+r)^n / ((1+r)^n - 1)
	compound := one.Add(monthlyRate).Pow(decimal.NewFromInt(int64(tenureMonths)))
	emi := principal.Mul(monthlyRate).Mul(compound).Div(compound.Sub(one)).Round(2)

	schedule := make([]ScheduleItem, 0, tenureMonths)
	remaining := principal

	for i := 1; i <= tenureMonths; i++ {
		interest := remaining.Mul(monthlyRate).Round(2)
		principalPart := emi.Sub(interest)

		// The rounded EMI can overshoot the balance on the last installment;
		// settle whatever principal is left there instead.
		if i == tenureMonths || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}

		remaining = remaining.Sub(principalPart)
		schedule = append(schedule, ScheduleItem{
			EmiNumber:          i,
			DueDate:            startDate.AddDate(0, i, 0),
			PrincipalComponent: principalPart,
			InterestComponent:  interest,
			TotalEmiAmount:     principalPart.Add(interest),
			PrincipalRemaining: remaining,
		})
	}

	return schedule, nil
}
