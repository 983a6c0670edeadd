package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmiStatusFilter selects which unpaid installments a due-EMI query returns.
type EmiStatusFilter string

const (
	EmiFilterUpcoming EmiStatusFilter = "UPCOMING"
	EmiFilterOverdue  EmiStatusFilter = "OVERDUE"
)

// DueEmi is one unpaid installment with any accrued penalty.
type DueEmi struct {
	EmiNumber          int             `json:"emi_number"`
	DueDate            time.Time       `json:"due_date"`
	PrincipalComponent decimal.Decimal `json:"principal_component"`
	InterestComponent  decimal.Decimal `json:"interest_component"`
	TotalEmiAmount     decimal.Decimal `json:"total_emi_amount"`
	DaysOverdue        int             `json:"days_overdue"`
	PenaltyAmount      decimal.Decimal `json:"penalty_amount"`
	TotalDue           decimal.Decimal `json:"total_due"` // EMI + penalty
}
