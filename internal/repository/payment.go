package repository

import (
	"fmt"

	"github.com/akotov/loan-service/internal/models"
	"github.com/lib/pq"
)

// PaidInstallments returns the EMI sequence numbers already settled for a
// loan, in ascending order.
func (r *Repository) PaidInstallments(loanID int64) ([]int, error) {
	query := `
		SELECT emi_number
		FROM loan.payment_installments
		WHERE loan_id = $1
		ORDER BY emi_number`
	rows, err := r.db.Query(query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list paid installments: %w", err)
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan installment number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

// RecordPayment persists a payment, the installments it settled, and the
// loan's updated balance/status in a single transaction. The loan row is
// locked for the duration so concurrent payments serialize at the store too.
func (r *Repository) RecordPayment(loan *models.Loan, payment *models.LoanPayment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin payment transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`SELECT id FROM loan.loans WHERE id = $1 FOR UPDATE`, loan.ID); err != nil {
		return fmt.Errorf("failed to lock loan: %w", err)
	}

	err = tx.QueryRow(`
		INSERT INTO loan.payments (loan_id, amount, payment_date, status, transaction_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		payment.LoanID, payment.Amount, payment.PaymentDate, payment.Status, payment.TransactionID,
	).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	for _, emi := range payment.SettledEmis {
		_, err := tx.Exec(`
			INSERT INTO loan.payment_installments (loan_id, payment_id, emi_number, paid_on)
			VALUES ($1, $2, $3, $4)`,
			loan.ID, payment.ID, emi, payment.PaymentDate,
		)
		if err != nil {
			return fmt.Errorf("failed to record settled installment %d: %w", emi, err)
		}
	}

	_, err = tx.Exec(`
		UPDATE loan.loans
		SET principal_remaining = $1, status = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`,
		loan.PrincipalRemaining, loan.Status, loan.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}
	return nil
}

// ListPaymentsFor returns the payment history for a loan, newest first.
func (r *Repository) ListPaymentsFor(loanID int64) ([]*models.LoanPayment, error) {
	query := `
		SELECT p.id, p.loan_id, p.amount, p.payment_date, p.status, p.transaction_id,
		       COALESCE(array_agg(i.emi_number ORDER BY i.emi_number) FILTER (WHERE i.emi_number IS NOT NULL), '{}')
		FROM loan.payments p
		LEFT JOIN loan.payment_installments i ON i.payment_id = p.id
		WHERE p.loan_id = $1
		GROUP BY p.id
		ORDER BY p.payment_date DESC`
	rows, err := r.db.Query(query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.LoanPayment
	for rows.Next() {
		p := &models.LoanPayment{}
		var settled pq.Int64Array
		if err := rows.Scan(&p.ID, &p.LoanID, &p.Amount, &p.PaymentDate, &p.Status, &p.TransactionID, &settled); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		for _, n := range settled {
			p.SettledEmis = append(p.SettledEmis, int(n))
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
