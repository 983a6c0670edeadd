package service

import (
	"errors"
	"sync"

	"github.com/akotov/loan-service/internal/amortization"
	"github.com/akotov/loan-service/internal/apperr"
	"github.com/akotov/loan-service/internal/models"
	"github.com/akotov/loan-service/internal/repository"
	"github.com/akotov/loan-service/internal/utils"
	"github.com/shopspring/decimal"
)

// MakePayment applies a customer payment against a loan's outstanding EMI
// schedule, earliest due date first. Each targeted installment must be
// covered in full (EMI plus any overdue penalty); excess rolls to the next
// unpaid installment. A residual that cannot fully cover the next
// installment fails the payment before anything is written. The whole
// read-compute-write sequence holds the loan's mutex, so two concurrent
// payments can never double-apply against the same unpaid view.
func (s *Service) MakePayment(customerID int64, loanNumber string, amount decimal.Decimal) (*models.PaymentReceipt, error) {
	if !utils.ValidLoanNumber(loanNumber) {
		return nil, apperr.Validation("wrong loan number format: %q", loanNumber)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.Validation("payment amount must be positive, got %s", amount)
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, apperr.Validation("payment amount must have at most 2 decimal places, got %s", amount)
	}

	lock := s.loanLock(loanNumber)
	lock.Lock()
	defer lock.Unlock()

	loan, err := s.findOwnedLoan(customerID, loanNumber)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusActive {
		return nil, apperr.BusinessRule("loan %s is not active", loanNumber)
	}

	unpaid, err := s.unpaidInstallments(loan)
	if err != nil {
		return nil, err
	}
	if len(unpaid) == 0 {
		return nil, apperr.BusinessRule("loan %s has no outstanding installments", loanNumber)
	}

	now := s.now()
	remaining := amount
	principalPaid := decimal.Zero
	var settled []int

	for _, item := range unpaid {
		penalty := amortization.OverduePenalty(item.TotalEmiAmount, amortization.DaysOverdue(item.DueDate, now), s.config.PenaltyDailyRatePct)
		due := item.TotalEmiAmount.Add(penalty)
		if remaining.LessThan(due) {
			break
		}
		remaining = remaining.Sub(due)
		principalPaid = principalPaid.Add(item.PrincipalComponent)
		settled = append(settled, item.EmiNumber)
	}

	if len(settled) == 0 {
		return nil, apperr.BusinessRule("amount %s does not cover the earliest due installment of loan %s", amount, loanNumber)
	}
	if remaining.GreaterThan(decimal.Zero) {
		if len(settled) == len(unpaid) {
			return nil, apperr.BusinessRule("amount %s exceeds the total outstanding on loan %s", amount, loanNumber)
		}
		return nil, apperr.BusinessRule("payment must cover whole installments: %s left over after settling %d installment(s)", remaining, len(settled))
	}

	loan.PrincipalRemaining = loan.PrincipalRemaining.Sub(principalPaid)
	if len(settled) == len(unpaid) {
		// Final installment fully paid; reconciliation guarantees zero here.
		loan.PrincipalRemaining = decimal.Zero
		loan.Status = models.LoanStatusClosed
	}

	payment := &models.LoanPayment{
		LoanID:        loan.ID,
		Amount:        amount,
		PaymentDate:   now,
		Status:        models.PaymentStatusPaid,
		TransactionID: utils.GenerateTransactionID(),
		SettledEmis:   settled,
	}
	if err := s.store.RecordPayment(loan, payment); err != nil {
		return nil, apperr.Unexpected(err, "failed to record payment")
	}

	s.log.Infof("Payment %s of %s applied to loan %s (settled EMIs %v, remaining %s)",
		payment.TransactionID, amount, loanNumber, settled, loan.PrincipalRemaining)

	receipt := &models.PaymentReceipt{
		LoanNumber:         loan.LoanNumber,
		Amount:             amount,
		PaymentDate:        payment.PaymentDate,
		TransactionID:      payment.TransactionID,
		SettledEmis:        settled,
		PrincipalRemaining: loan.PrincipalRemaining,
		LoanStatus:         loan.Status,
	}
	s.notifyReceipt(customerID, receipt)
	return receipt, nil
}

// GetDueEmis returns a loan's unpaid installments with penalties, filtered
// to overdue or upcoming. Pure read: nothing is mutated.
func (s *Service) GetDueEmis(callerID int64, role models.Role, loanNumber string, filter models.EmiStatusFilter) ([]models.DueEmi, error) {
	if !utils.ValidLoanNumber(loanNumber) {
		return nil, apperr.Validation("wrong loan number format: %q", loanNumber)
	}
	if filter != models.EmiFilterUpcoming && filter != models.EmiFilterOverdue {
		return nil, apperr.Validation("status must be %s or %s, got %q", models.EmiFilterUpcoming, models.EmiFilterOverdue, filter)
	}

	loan, err := s.findLoan(loanNumber)
	if err != nil {
		return nil, err
	}
	if loan.CustomerID != callerID && !isStaff(role) {
		return nil, apperr.NotFound("loan %s does not exist", loanNumber)
	}

	unpaid, err := s.unpaidInstallments(loan)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var result []models.DueEmi
	for _, item := range unpaid {
		days := amortization.DaysOverdue(item.DueDate, now)
		if filter == models.EmiFilterOverdue && days == 0 {
			continue
		}
		if filter == models.EmiFilterUpcoming && days > 0 {
			continue
		}
		penalty := amortization.OverduePenalty(item.TotalEmiAmount, days, s.config.PenaltyDailyRatePct)
		result = append(result, models.DueEmi{
			EmiNumber:          item.EmiNumber,
			DueDate:            item.DueDate,
			PrincipalComponent: item.PrincipalComponent,
			InterestComponent:  item.InterestComponent,
			TotalEmiAmount:     item.TotalEmiAmount,
			DaysOverdue:        days,
			PenaltyAmount:      penalty,
			TotalDue:           item.TotalEmiAmount.Add(penalty),
		})
	}
	return result, nil
}

// ListLoans returns the caller's loans.
func (s *Service) ListLoans(customerID int64) ([]*models.Loan, error) {
	loans, err := s.store.ListLoansFor(customerID)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list loans")
	}
	return loans, nil
}

// ListPayments returns the payment history for a loan the caller may see.
func (s *Service) ListPayments(callerID int64, role models.Role, loanNumber string) ([]*models.LoanPayment, error) {
	if !utils.ValidLoanNumber(loanNumber) {
		return nil, apperr.Validation("wrong loan number format: %q", loanNumber)
	}
	loan, err := s.findLoan(loanNumber)
	if err != nil {
		return nil, err
	}
	if loan.CustomerID != callerID && !isStaff(role) {
		return nil, apperr.NotFound("loan %s does not exist", loanNumber)
	}
	payments, err := s.store.ListPaymentsFor(loan.ID)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list payments")
	}
	return payments, nil
}

// unpaidInstallments rebuilds the loan's schedule from its own terms and
// drops the installments already settled by recorded payments. The schedule
// itself is never persisted; the loan plus its payment records are the
// source of truth.
func (s *Service) unpaidInstallments(loan *models.Loan) ([]amortization.ScheduleItem, error) {
	schedule, err := amortization.GenerateSchedule(loan.Principal, loan.InterestRate, loan.TenureInMonths, loan.StartDate)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to rebuild schedule for loan %s", loan.LoanNumber)
	}

	paid, err := s.store.PaidInstallments(loan.ID)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to load paid installments")
	}
	paidSet := make(map[int]bool, len(paid))
	for _, n := range paid {
		paidSet[n] = true
	}

	var unpaid []amortization.ScheduleItem
	for _, item := range schedule {
		if !paidSet[item.EmiNumber] {
			unpaid = append(unpaid, item)
		}
	}
	return unpaid, nil
}

func (s *Service) findOwnedLoan(customerID int64, number string) (*models.Loan, error) {
	loan, err := s.findLoan(number)
	if err != nil {
		return nil, err
	}
	if loan.CustomerID != customerID {
		return nil, apperr.NotFound("loan %s does not exist", number)
	}
	return loan, nil
}

func (s *Service) findLoan(number string) (*models.Loan, error) {
	loan, err := s.store.FindLoanByNumber(number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("loan %s does not exist", number)
		}
		return nil, apperr.Unexpected(err, "failed to load loan")
	}
	return loan, nil
}

// loanLock returns the mutex for a loan number. Entries stay in the map for
// the life of the process; evicting them would race with a concurrent
// LoadOrStore handing out a second mutex for the same loan.
func (s *Service) loanLock(number string) *sync.Mutex {
	v, _ := s.loanLocks.LoadOrStore(number, &sync.Mutex{})
	return v.(*sync.Mutex)
}
