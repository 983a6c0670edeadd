package email

import (
	"fmt"
	"net/smtp"

	"github.com/akotov/loan-service/internal/config"
	"github.com/akotov/loan-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendApplicationDecision notifies a customer about a review decision.
func (s *Sender) SendApplicationDecision(to, name string, app *models.LoanApplication) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}

	body := fmt.Sprintf("Dear %s,\n\n", name)
	if app.Status == models.ApplicationStatusApproved {
		e.Subject = "Loan Application Approved"
		body += fmt.Sprintf(
			"Your loan application %s has been approved for %s.\n"+
				"The loan is now active; the first EMI falls due one month from today.\n",
			app.ApplicationNumber, app.ApprovedAmount.StringFixed(2),
		)
	} else {
		e.Subject = "Loan Application Rejected"
		body += fmt.Sprintf(
			"Your loan application %s has been rejected.\n"+
				"Reviewer comments: %s\n",
			app.ApplicationNumber, app.ManagerComments,
		)
	}
	body += "\nBest regards,\nLoan Service"
	e.Text = []byte(body)

	return s.send(e)
}

// SendPaymentReceipt confirms a recorded payment.
func (s *Sender) SendPaymentReceipt(to, name string, receipt *models.PaymentReceipt) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Payment Received"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"We received your payment of %s against loan %s.\n"+
			"Transaction id: %s\n"+
			"Principal remaining: %s\n",
		name, receipt.Amount.StringFixed(2), receipt.LoanNumber,
		receipt.TransactionID, receipt.PrincipalRemaining.StringFixed(2),
	)
	if receipt.LoanStatus == models.LoanStatusClosed {
		body += "Your loan is now fully repaid and closed. Congratulations!\n"
	}
	body += "\nBest regards,\nLoan Service"
	e.Text = []byte(body)

	return s.send(e)
}

// SendPaymentReminder sends an upcoming or overdue EMI reminder.
func (s *Sender) SendPaymentReminder(to, name, loanNumber string, due models.DueEmi) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if due.DaysOverdue > 0 {
		e.Subject = "Overdue EMI Notification"
	} else {
		e.Subject = "Upcoming EMI Reminder"
	}

	body := fmt.Sprintf("Dear %s,\n\n", name)
	if due.DaysOverdue > 0 {
		body += fmt.Sprintf(
			"EMI %d of %s on loan %s was due on %s and is %d day(s) overdue.\n"+
				"A penalty of %s has accrued; the total due is %s.\n"+
				"Please make the payment as soon as possible to avoid further penalties.\n",
			due.EmiNumber, due.TotalEmiAmount.StringFixed(2), loanNumber,
			due.DueDate.Format("2006-01-02"), due.DaysOverdue,
			due.PenaltyAmount.StringFixed(2), due.TotalDue.StringFixed(2),
		)
	} else {
		body += fmt.Sprintf(
			"This is a reminder that EMI %d of %s on loan %s is due on %s.\n"+
				"Please ensure sufficient funds are available.\n",
			due.EmiNumber, due.TotalEmiAmount.StringFixed(2), loanNumber,
			due.DueDate.Format("2006-01-02"),
		)
	}
	body += "\nBest regards,\nLoan Service"
	e.Text = []byte(body)

	return s.send(e)
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}
