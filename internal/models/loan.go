package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus represents the lifecycle stage of a disbursed loan.
type LoanStatus string

const (
	LoanStatusActive LoanStatus = "ACTIVE"
	LoanStatusClosed LoanStatus = "CLOSED"
)

// Loan represents an active credit created from an approved application.
// InterestRate is copied from the loan type at approval time; later catalog
// changes never alter an existing loan.
type Loan struct {
	ID                 int64           `json:"id"`
	LoanNumber         string          `json:"loan_number"`
	ApplicationID      int64           `json:"application_id"`
	CustomerID         int64           `json:"customer_id"`
	Principal          decimal.Decimal `json:"principal"`
	InterestRate       decimal.Decimal `json:"interest_rate"` // Annual, percent
	TenureInMonths     int             `json:"tenure_in_months"`
	StartDate          time.Time       `json:"start_date"`
	PrincipalRemaining decimal.Decimal `json:"principal_remaining"`
	Status             LoanStatus      `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
