package repository

import (
	"fmt"

	"github.com/akotov/loan-service/internal/models"
)

const loanColumns = `
	id, loan_number, application_id, customer_id, principal, interest_rate,
	tenure_in_months, start_date, principal_remaining, status, created_at, updated_at`

func scanLoan(row interface{ Scan(...interface{}) error }) (*models.Loan, error) {
	loan := &models.Loan{}
	err := row.Scan(
		&loan.ID, &loan.LoanNumber, &loan.ApplicationID, &loan.CustomerID,
		&loan.Principal, &loan.InterestRate, &loan.TenureInMonths, &loan.StartDate,
		&loan.PrincipalRemaining, &loan.Status, &loan.CreatedAt, &loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// FindLoanByNumber retrieves a loan by its loan number
func (r *Repository) FindLoanByNumber(number string) (*models.Loan, error) {
	query := `SELECT` + loanColumns + ` FROM loan.loans WHERE loan_number = $1`
	loan, err := scanLoan(r.db.QueryRow(query, number))
	if err != nil {
		return nil, fmt.Errorf("failed to find loan: %w", noRows(err))
	}
	return loan, nil
}

// ListLoansFor returns all loans owned by a customer
func (r *Repository) ListLoansFor(customerID int64) ([]*models.Loan, error) {
	query := `SELECT` + loanColumns + `
		FROM loan.loans
		WHERE customer_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

// ListActiveLoans returns every active loan, used by the overdue sweep.
func (r *Repository) ListActiveLoans() ([]*models.Loan, error) {
	query := `SELECT` + loanColumns + ` FROM loan.loans WHERE status = 'ACTIVE' ORDER BY id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active loans: %w", err)
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}
