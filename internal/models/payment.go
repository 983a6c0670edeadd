package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the outcome of a payment attempt.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// LoanPayment records one payment attempt against a loan. A Paid record is
// immutable. SettledEmis lists the installment numbers the payment covered,
// which is how the paid/unpaid view of the schedule is reconstructed.
type LoanPayment struct {
	ID            int64           `json:"id"`
	LoanID        int64           `json:"loan_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	Status        PaymentStatus   `json:"status"`
	TransactionID string          `json:"transaction_id"`
	SettledEmis   []int           `json:"settled_emis,omitempty"`
}

// PaymentReceipt is returned to the customer after a successful payment.
type PaymentReceipt struct {
	LoanNumber         string          `json:"loan_number"`
	Amount             decimal.Decimal `json:"amount"`
	PaymentDate        time.Time       `json:"payment_date"`
	TransactionID      string          `json:"transaction_id"`
	SettledEmis        []int           `json:"settled_emis"`
	PrincipalRemaining decimal.Decimal `json:"principal_remaining"`
	LoanStatus         LoanStatus      `json:"loan_status"`
}
