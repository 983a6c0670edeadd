package repository

import (
	"fmt"

	"github.com/akotov/loan-service/internal/models"
)

// CreateLoanType inserts a loan type into the catalog
func (r *Repository) CreateLoanType(lt *models.LoanType) error {
	query := `
		INSERT INTO loan.loan_types (name, interest_rate, min_amount, max_tenure_in_months, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, lt.Name, lt.InterestRate, lt.MinAmount, lt.MaxTenureInMonths).
		Scan(&lt.ID, &lt.CreatedAt, &lt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create loan type: %w", err)
	}
	return nil
}

// UpdateLoanType updates catalog bounds for an existing loan type. Existing
// loans keep the rate copied at approval time.
func (r *Repository) UpdateLoanType(lt *models.LoanType) error {
	query := `
		UPDATE loan.loan_types
		SET name = $1, interest_rate = $2, min_amount = $3, max_tenure_in_months = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
		RETURNING updated_at`
	err := r.db.QueryRow(query, lt.Name, lt.InterestRate, lt.MinAmount, lt.MaxTenureInMonths, lt.ID).
		Scan(&lt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update loan type: %w", noRows(err))
	}
	return nil
}

// FindLoanTypeByID retrieves a loan type by id
func (r *Repository) FindLoanTypeByID(id int64) (*models.LoanType, error) {
	lt := &models.LoanType{}
	query := `
		SELECT id, name, interest_rate, min_amount, max_tenure_in_months, created_at, updated_at
		FROM loan.loan_types
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&lt.ID, &lt.Name, &lt.InterestRate, &lt.MinAmount, &lt.MaxTenureInMonths, &lt.CreatedAt, &lt.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan type: %w", noRows(err))
	}
	return lt, nil
}

// ListLoanTypes returns the whole catalog
func (r *Repository) ListLoanTypes() ([]*models.LoanType, error) {
	query := `
		SELECT id, name, interest_rate, min_amount, max_tenure_in_months, created_at, updated_at
		FROM loan.loan_types
		ORDER BY id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan types: %w", err)
	}
	defer rows.Close()

	var types []*models.LoanType
	for rows.Next() {
		lt := &models.LoanType{}
		if err := rows.Scan(&lt.ID, &lt.Name, &lt.InterestRate, &lt.MinAmount, &lt.MaxTenureInMonths, &lt.CreatedAt, &lt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan loan type: %w", err)
		}
		types = append(types, lt)
	}
	return types, rows.Err()
}
