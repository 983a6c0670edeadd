package service

import (
	"errors"
	"strings"
	"time"

	"github.com/akotov/loan-service/internal/apperr"
	"github.com/akotov/loan-service/internal/models"
	"github.com/akotov/loan-service/internal/repository"
	"github.com/akotov/loan-service/internal/utils"
	"github.com/shopspring/decimal"
)

// SubmitApplication files a new loan application for a customer. All
// preconditions are checked, in order, before anything is written: the
// global amount ceiling, the loan type's bounds, the customer's credit
// score, and the cooldown window since their previous application.
func (s *Service) SubmitApplication(customerID, loanTypeID int64, amount decimal.Decimal, tenureMonths int) (*models.LoanApplication, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.Validation("requested amount must be positive, got %s", amount)
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, apperr.Validation("requested amount must have at most 2 decimal places, got %s", amount)
	}
	if tenureMonths < 1 {
		return nil, apperr.Validation("requested tenure must be at least 1 month, got %d", tenureMonths)
	}

	if amount.GreaterThan(s.config.MaxLoanAmount) {
		return nil, apperr.BusinessRule("requested amount %s exceeds the maximum loan amount %s", amount, s.config.MaxLoanAmount)
	}

	lt, err := s.findLoanType(loanTypeID)
	if err != nil {
		return nil, err
	}
	if amount.LessThan(lt.MinAmount) {
		return nil, apperr.BusinessRule("requested amount %s is below the minimum %s for %s", amount, lt.MinAmount, lt.Name)
	}
	if tenureMonths > lt.MaxTenureInMonths {
		return nil, apperr.BusinessRule("requested tenure %d months exceeds the maximum %d for %s", tenureMonths, lt.MaxTenureInMonths, lt.Name)
	}

	customer, err := s.store.FindUserByID(customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("customer %d does not exist", customerID)
		}
		return nil, apperr.Unexpected(err, "failed to load customer")
	}
	if customer.CreditScore < s.config.MinCreditScore {
		return nil, apperr.BusinessRule("credit score too low: %d is below the required %d", customer.CreditScore, s.config.MinCreditScore)
	}

	if err := s.checkCooldown(customerID); err != nil {
		return nil, err
	}

	manager, err := s.store.FindAvailableManager()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.BusinessRule("no managers available to review the application")
		}
		return nil, apperr.Unexpected(err, "failed to assign a manager")
	}

	number, err := utils.GenerateApplicationNumber()
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to allocate application number")
	}

	app := &models.LoanApplication{
		ApplicationNumber: number,
		CustomerID:        customerID,
		LoanTypeID:        loanTypeID,
		RequestedAmount:   amount,
		RequestedTenure:   tenureMonths,
		Status:            models.ApplicationStatusPending,
		AssignedTo:        manager.ID,
	}
	if err := s.store.CreateApplication(app); err != nil {
		return nil, apperr.Unexpected(err, "failed to create application")
	}

	s.log.Infof("Application %s submitted by customer %d, assigned to manager %d", app.ApplicationNumber, customerID, manager.ID)
	return app, nil
}

// checkCooldown enforces the minimum gap between a customer's consecutive
// applications. The boundary is inclusive: a submission exactly
// ApplicationCooldownDays after the previous one is allowed.
func (s *Service) checkCooldown(customerID int64) error {
	latest, err := s.store.LatestApplicationFor(customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil // First application
		}
		return apperr.Unexpected(err, "failed to load previous applications")
	}

	cooldown := time.Duration(s.config.ApplicationCooldownDays) * 24 * time.Hour
	if s.now().Sub(latest.CreatedAt) < cooldown {
		return apperr.BusinessRule("a new application can be submitted only %d days after the previous one", s.config.ApplicationCooldownDays)
	}
	return nil
}

// ReviewApplication records a manager's decision on a pending application.
// Approval atomically creates the loan: the interest rate is copied from the
// loan type at this moment and never changes afterwards.
func (s *Service) ReviewApplication(reviewerID int64, role models.Role, appNumber string, approve bool, approvedAmount decimal.Decimal, comments string) (*models.LoanApplication, error) {
	if !utils.ValidApplicationNumber(appNumber) {
		return nil, apperr.Validation("wrong application number format: %q", appNumber)
	}

	app, err := s.findApplication(appNumber)
	if err != nil {
		return nil, err
	}
	if !canReview(reviewerID, role, app) {
		return nil, apperr.Forbidden("application %s is not assigned to you", appNumber)
	}
	if !app.IsPending() {
		return nil, apperr.BusinessRule("application %s is already reviewed", appNumber)
	}

	now := s.now()
	app.ManagerComments = strings.TrimSpace(comments)
	app.ReviewedAt = &now

	var loan *models.Loan
	if approve {
		loan, err = s.approve(app, approvedAmount, now)
		if err != nil {
			return nil, err
		}
	} else {
		if app.ManagerComments == "" {
			return nil, apperr.Validation("comments are required when rejecting an application")
		}
		app.Status = models.ApplicationStatusRejected
	}

	if err := s.store.SaveReview(app, loan); err != nil {
		return nil, apperr.Unexpected(err, "failed to save review")
	}

	if loan != nil {
		s.log.Infof("Application %s approved for %s; loan %s created", app.ApplicationNumber, app.ApprovedAmount, loan.LoanNumber)
	} else {
		s.log.Infof("Application %s rejected: %s", app.ApplicationNumber, app.ManagerComments)
	}
	s.notifyDecision(app)
	return app, nil
}

func (s *Service) approve(app *models.LoanApplication, approvedAmount decimal.Decimal, now time.Time) (*models.Loan, error) {
	if approvedAmount.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.Validation("approved amount must be positive, got %s", approvedAmount)
	}
	if approvedAmount.GreaterThan(app.RequestedAmount) {
		return nil, apperr.BusinessRule("approved amount %s cannot exceed requested amount %s", approvedAmount, app.RequestedAmount)
	}
	lt, err := s.findLoanType(app.LoanTypeID)
	if err != nil {
		return nil, err
	}
	if approvedAmount.LessThan(lt.MinAmount) {
		return nil, apperr.BusinessRule("approved amount %s is below the minimum %s for %s", approvedAmount, lt.MinAmount, lt.Name)
	}

	number, err := utils.GenerateLoanNumber()
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to allocate loan number")
	}

	app.Status = models.ApplicationStatusApproved
	app.ApprovedAmount = &approvedAmount

	return &models.Loan{
		LoanNumber:         number,
		ApplicationID:      app.ID,
		CustomerID:         app.CustomerID,
		Principal:          approvedAmount,
		InterestRate:       lt.InterestRate,
		TenureInMonths:     app.RequestedTenure,
		StartDate:          now,
		PrincipalRemaining: approvedAmount,
		Status:             models.LoanStatusActive,
	}, nil
}

// GetApplication returns one application, visible to its customer, the
// assigned reviewer, and admins.
func (s *Service) GetApplication(callerID int64, role models.Role, appNumber string) (*models.LoanApplication, error) {
	if !utils.ValidApplicationNumber(appNumber) {
		return nil, apperr.Validation("wrong application number format: %q", appNumber)
	}
	app, err := s.findApplication(appNumber)
	if err != nil {
		return nil, err
	}
	if app.CustomerID != callerID && !isStaff(role) {
		return nil, apperr.NotFound("application %s does not exist", appNumber)
	}
	return app, nil
}

// ListCustomerApplications returns all applications filed by the caller.
func (s *Service) ListCustomerApplications(customerID int64) ([]*models.LoanApplication, error) {
	apps, err := s.store.ListApplicationsFor(customerID)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list applications")
	}
	return apps, nil
}

// ListAssignedApplications returns all applications assigned to a reviewer.
func (s *Service) ListAssignedApplications(employeeID int64) ([]*models.LoanApplication, error) {
	apps, err := s.store.ListAssignedApplications(employeeID)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list assigned applications")
	}
	return apps, nil
}

func (s *Service) findApplication(number string) (*models.LoanApplication, error) {
	app, err := s.store.FindApplicationByNumber(number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("application %s does not exist", number)
		}
		return nil, apperr.Unexpected(err, "failed to load application")
	}
	return app, nil
}
