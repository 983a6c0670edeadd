package service

import (
	"errors"
	"strings"

	"github.com/akotov/loan-service/internal/amortization"
	"github.com/akotov/loan-service/internal/apperr"
	"github.com/akotov/loan-service/internal/models"
	"github.com/akotov/loan-service/internal/repository"
	"github.com/shopspring/decimal"
)

const maxTenureCeiling = 480 // months

var maxRatePct = decimal.NewFromInt(100)

func validateLoanType(lt *models.LoanType) error {
	lt.Name = strings.TrimSpace(lt.Name)
	if lt.Name == "" {
		return apperr.Validation("loan type name is required")
	}
	if lt.InterestRate.LessThanOrEqual(decimal.Zero) || lt.InterestRate.GreaterThan(maxRatePct) {
		return apperr.Validation("interest rate must be in (0, 100], got %s", lt.InterestRate)
	}
	if lt.MinAmount.LessThanOrEqual(decimal.Zero) {
		return apperr.Validation("minimum amount must be positive, got %s", lt.MinAmount)
	}
	if lt.MaxTenureInMonths < 1 || lt.MaxTenureInMonths > maxTenureCeiling {
		return apperr.Validation("max tenure must be between 1 and %d months, got %d", maxTenureCeiling, lt.MaxTenureInMonths)
	}
	return nil
}

// CreateLoanType adds a product to the catalog.
func (s *Service) CreateLoanType(lt *models.LoanType) (*models.LoanType, error) {
	if err := validateLoanType(lt); err != nil {
		return nil, err
	}
	if err := s.store.CreateLoanType(lt); err != nil {
		return nil, apperr.Unexpected(err, "failed to create loan type")
	}
	s.log.Infof("Loan type created: %s (%s%%)", lt.Name, lt.InterestRate)
	return lt, nil
}

// UpdateLoanType updates catalog bounds. Existing loans and schedules are
// unaffected; they keep the rate copied at approval time.
func (s *Service) UpdateLoanType(lt *models.LoanType) (*models.LoanType, error) {
	if err := validateLoanType(lt); err != nil {
		return nil, err
	}
	if _, err := s.findLoanType(lt.ID); err != nil {
		return nil, err
	}
	if err := s.store.UpdateLoanType(lt); err != nil {
		return nil, apperr.Unexpected(err, "failed to update loan type")
	}
	s.log.Infof("Loan type updated: %s (%s%%)", lt.Name, lt.InterestRate)
	return lt, nil
}

// GetLoanType retrieves one catalog entry.
func (s *Service) GetLoanType(id int64) (*models.LoanType, error) {
	return s.findLoanType(id)
}

// ListLoanTypes returns the catalog.
func (s *Service) ListLoanTypes() ([]*models.LoanType, error) {
	types, err := s.store.ListLoanTypes()
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list loan types")
	}
	return types, nil
}

// PreviewEmi returns the schedule a loan of the given shape would have at
// the loan type's current rate, without creating anything.
func (s *Service) PreviewEmi(loanTypeID int64, amount decimal.Decimal, tenureMonths int) ([]amortization.ScheduleItem, error) {
	lt, err := s.findLoanType(loanTypeID)
	if err != nil {
		return nil, err
	}
	if amount.LessThan(lt.MinAmount) {
		return nil, apperr.BusinessRule("amount %s is below the minimum %s for %s", amount, lt.MinAmount, lt.Name)
	}
	if tenureMonths > lt.MaxTenureInMonths {
		return nil, apperr.BusinessRule("tenure %d months exceeds the maximum %d for %s", tenureMonths, lt.MaxTenureInMonths, lt.Name)
	}

	schedule, err := amortization.GenerateSchedule(amount, lt.InterestRate, tenureMonths, s.now())
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}
	return schedule, nil
}

func (s *Service) findLoanType(id int64) (*models.LoanType, error) {
	lt, err := s.store.FindLoanTypeByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("loan type %d does not exist", id)
		}
		return nil, apperr.Unexpected(err, "failed to load loan type")
	}
	return lt, nil
}
