package models

import "time"

// Role determines what a user may do in the system.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// User represents a customer or an employee of the bank.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not serialized
	Role         Role      `json:"role"`
	CreditScore  int       `json:"credit_score,omitempty"` // Customers only
	Active       bool      `json:"active"`                 // Managers: available for review assignment
	CreatedAt    time.Time `json:"created_at"`
}
