package service

import (
	"github.com/akotov/loan-service/internal/amortization"
	"github.com/akotov/loan-service/internal/models"
)

// Remind this many days before an EMI falls due.
const reminderWindowDays = 3

// SendDueReminders walks every active loan and emails its owner about
// overdue installments and installments due within the reminder window.
// Failures are logged per loan; the sweep always finishes.
func (s *Service) SendDueReminders() {
	loans, err := s.store.ListActiveLoans()
	if err != nil {
		s.log.Errorf("Due-reminder sweep failed to list active loans: %v", err)
		return
	}

	now := s.now()
	reminded := 0
	for _, loan := range loans {
		unpaid, err := s.unpaidInstallments(loan)
		if err != nil {
			s.log.Errorf("Due-reminder sweep skipped loan %s: %v", loan.LoanNumber, err)
			continue
		}
		if len(unpaid) == 0 {
			continue
		}

		// Only the earliest unpaid installment matters for a reminder.
		item := unpaid[0]
		days := amortization.DaysOverdue(item.DueDate, now)
		dueSoon := days == 0 && item.DueDate.Sub(now).Hours() <= reminderWindowDays*24
		if days == 0 && !dueSoon {
			continue
		}

		penalty := amortization.OverduePenalty(item.TotalEmiAmount, days, s.config.PenaltyDailyRatePct)
		due := models.DueEmi{
			EmiNumber:          item.EmiNumber,
			DueDate:            item.DueDate,
			PrincipalComponent: item.PrincipalComponent,
			InterestComponent:  item.InterestComponent,
			TotalEmiAmount:     item.TotalEmiAmount,
			DaysOverdue:        days,
			PenaltyAmount:      penalty,
			TotalDue:           item.TotalEmiAmount.Add(penalty),
		}

		if s.mail == nil {
			continue
		}
		customer, err := s.store.FindUserByID(loan.CustomerID)
		if err != nil {
			s.log.Errorf("Due-reminder sweep could not load customer %d: %v", loan.CustomerID, err)
			continue
		}
		if err := s.mail.SendPaymentReminder(customer.Email, customer.Name, loan.LoanNumber, due); err != nil {
			s.log.Warnf("Failed to send reminder for loan %s: %v", loan.LoanNumber, err)
			continue
		}
		reminded++
	}

	s.log.Infof("Due-reminder sweep finished: %d loan(s) checked, %d reminder(s) sent", len(loans), reminded)
}
