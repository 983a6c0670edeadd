package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanType represents a product in the loan catalog.
type LoanType struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	InterestRate      decimal.Decimal `json:"interest_rate"` // Annual, percent, 2 decimals
	MinAmount         decimal.Decimal `json:"min_amount"`
	MaxTenureInMonths int             `json:"max_tenure_in_months"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
