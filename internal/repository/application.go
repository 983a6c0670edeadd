package repository

import (
	"database/sql"
	"fmt"

	"github.com/akotov/loan-service/internal/models"
	"github.com/shopspring/decimal"
)

const applicationColumns = `
	id, application_number, customer_id, loan_type_id, requested_amount,
	requested_tenure_in_months, status, assigned_to, approved_amount,
	manager_comments, created_at, reviewed_at`

func scanApplication(row interface{ Scan(...interface{}) error }) (*models.LoanApplication, error) {
	app := &models.LoanApplication{}
	var approved decimal.NullDecimal
	var comments sql.NullString
	var reviewedAt sql.NullTime
	err := row.Scan(
		&app.ID, &app.ApplicationNumber, &app.CustomerID, &app.LoanTypeID,
		&app.RequestedAmount, &app.RequestedTenure, &app.Status, &app.AssignedTo,
		&approved, &comments, &app.CreatedAt, &reviewedAt,
	)
	if err != nil {
		return nil, err
	}
	if approved.Valid {
		app.ApprovedAmount = &approved.Decimal
	}
	if comments.Valid {
		app.ManagerComments = comments.String
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		app.ReviewedAt = &t
	}
	return app, nil
}

// CreateApplication persists a new application in Pending status
func (r *Repository) CreateApplication(app *models.LoanApplication) error {
	query := `
		INSERT INTO loan.applications
			(application_number, customer_id, loan_type_id, requested_amount,
			 requested_tenure_in_months, status, assigned_to, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query,
		app.ApplicationNumber, app.CustomerID, app.LoanTypeID, app.RequestedAmount,
		app.RequestedTenure, app.Status, app.AssignedTo,
	).Scan(&app.ID, &app.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// FindApplicationByNumber retrieves an application by its application number
func (r *Repository) FindApplicationByNumber(number string) (*models.LoanApplication, error) {
	query := `SELECT` + applicationColumns + ` FROM loan.applications WHERE application_number = $1`
	app, err := scanApplication(r.db.QueryRow(query, number))
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", noRows(err))
	}
	return app, nil
}

// LatestApplicationFor returns the customer's most recent application, or
// ErrNotFound when they have never applied.
func (r *Repository) LatestApplicationFor(customerID int64) (*models.LoanApplication, error) {
	query := `SELECT` + applicationColumns + `
		FROM loan.applications
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	app, err := scanApplication(r.db.QueryRow(query, customerID))
	if err != nil {
		return nil, fmt.Errorf("failed to find latest application: %w", noRows(err))
	}
	return app, nil
}

// ListApplicationsFor returns all applications filed by a customer
func (r *Repository) ListApplicationsFor(customerID int64) ([]*models.LoanApplication, error) {
	query := `SELECT` + applicationColumns + `
		FROM loan.applications
		WHERE customer_id = $1
		ORDER BY created_at DESC`
	return r.listApplications(query, customerID)
}

// ListAssignedApplications returns all applications assigned to an employee
func (r *Repository) ListAssignedApplications(employeeID int64) ([]*models.LoanApplication, error) {
	query := `SELECT` + applicationColumns + `
		FROM loan.applications
		WHERE assigned_to = $1
		ORDER BY created_at DESC`
	return r.listApplications(query, employeeID)
}

func (r *Repository) listApplications(query string, arg interface{}) ([]*models.LoanApplication, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.LoanApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// SaveReview persists a review decision. When loan is non-nil (approval) the
// application update and the loan insert commit in a single transaction, so
// an Approved application can never exist without its loan.
func (r *Repository) SaveReview(app *models.LoanApplication, loan *models.Loan) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin review transaction: %w", err)
	}
	defer tx.Rollback()

	var approved interface{}
	if app.Status == models.ApplicationStatusApproved {
		approved = app.ApprovedAmount
	}
	_, err = tx.Exec(`
		UPDATE loan.applications
		SET status = $1, approved_amount = $2, manager_comments = $3, reviewed_at = $4
		WHERE id = $5`,
		app.Status, approved, app.ManagerComments, app.ReviewedAt, app.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}

	if loan != nil {
		err = tx.QueryRow(`
			INSERT INTO loan.loans
				(loan_number, application_id, customer_id, principal, interest_rate,
				 tenure_in_months, start_date, principal_remaining, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			RETURNING id, created_at, updated_at`,
			loan.LoanNumber, loan.ApplicationID, loan.CustomerID, loan.Principal,
			loan.InterestRate, loan.TenureInMonths, loan.StartDate,
			loan.PrincipalRemaining, loan.Status,
		).Scan(&loan.ID, &loan.CreatedAt, &loan.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review: %w", err)
	}
	return nil
}
