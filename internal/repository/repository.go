package repository

import (
	"database/sql"
	"errors"

	"github.com/akotov/loan-service/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations the business layer depends on.
// SaveReview and RecordPayment are atomic: either every write in them
// commits, or none do.
type Store interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id int64) (*models.User, error)
	FindAvailableManager() (*models.User, error)

	CreateLoanType(lt *models.LoanType) error
	UpdateLoanType(lt *models.LoanType) error
	FindLoanTypeByID(id int64) (*models.LoanType, error)
	ListLoanTypes() ([]*models.LoanType, error)

	CreateApplication(app *models.LoanApplication) error
	FindApplicationByNumber(number string) (*models.LoanApplication, error)
	LatestApplicationFor(customerID int64) (*models.LoanApplication, error)
	ListApplicationsFor(customerID int64) ([]*models.LoanApplication, error)
	ListAssignedApplications(employeeID int64) ([]*models.LoanApplication, error)
	SaveReview(app *models.LoanApplication, loan *models.Loan) error

	FindLoanByNumber(number string) (*models.Loan, error)
	ListLoansFor(customerID int64) ([]*models.Loan, error)
	ListActiveLoans() ([]*models.Loan, error)
	PaidInstallments(loanID int64) ([]int, error)
	RecordPayment(loan *models.Loan, payment *models.LoanPayment) error
	ListPaymentsFor(loanID int64) ([]*models.LoanPayment, error)
}

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

var _ Store = (*Repository)(nil)

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func noRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
