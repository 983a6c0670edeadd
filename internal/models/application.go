package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus represents the lifecycle stage of a loan application.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusApproved ApplicationStatus = "APPROVED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// LoanApplication represents a customer's request for a loan. It is created
// once on submission and mutated exactly once by a manager's review.
type LoanApplication struct {
	ID                int64             `json:"id"`
	ApplicationNumber string            `json:"application_number"`
	CustomerID        int64             `json:"customer_id"`
	LoanTypeID        int64             `json:"loan_type_id"`
	RequestedAmount   decimal.Decimal   `json:"requested_amount"`
	RequestedTenure   int               `json:"requested_tenure_in_months"`
	Status            ApplicationStatus `json:"status"`
	AssignedTo        int64             `json:"assigned_to"` // Reviewing employee
	ApprovedAmount    *decimal.Decimal  `json:"approved_amount,omitempty"` // Set only once Approved
	ManagerComments   string            `json:"manager_comments,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	ReviewedAt        *time.Time        `json:"reviewed_at,omitempty"`
}

// IsPending reports whether the application still awaits review.
func (a *LoanApplication) IsPending() bool {
	return a.Status == ApplicationStatusPending
}
