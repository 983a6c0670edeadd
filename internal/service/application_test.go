package service

import (
	"testing"

	"github.com/akotov/loan-service/internal/apperr"
	"github.com/akotov/loan-service/internal/models"
	"github.com/akotov/loan-service/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitApplication(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	customer := seedCustomer(t, store, 700)
	manager := seedManager(t, store)
	lt := seedLoanType(t, store)

	app, err := svc.SubmitApplication(customer.ID, lt.ID, dec("50000"), 24)
	require.NoError(t, err)

	assert.True(t, utils.ValidApplicationNumber(app.ApplicationNumber))
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.Equal(t, customer.ID, app.CustomerID)
	assert.Equal(t, manager.ID, app.AssignedTo)
	assert.Equal(t, 24, app.RequestedTenure)
	assert.True(t, app.RequestedAmount.Equal(dec("50000")))

	stored, err := store.FindApplicationByNumber(app.ApplicationNumber)
	require.NoError(t, err)
	assert.Equal(t, app.ID, stored.ID)
}

func TestSubmitApplication_Validation(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	customer := seedCustomer(t, store, 700)
	seedManager(t, store)
	lt := seedLoanType(t, store)

	cases := []struct {
		name   string
		amount decimal.Decimal
		tenure int
	}{
		{"zero amount", dec("0"), 12},
		{"negative amount", dec("-500"), 12},
		{"three decimal places", dec("5000.123"), 12},
		{"zero tenure", dec("5000"), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitApplication(customer.ID, lt.ID, tc.amount, tc.tenure)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)
		})
	}
	assert.Empty(t, store.apps, "nothing may be persisted on a failed submission")
}

func TestSubmitApplication_BusinessRules(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	customer := seedCustomer(t, store, 700)
	seedManager(t, store)
	lt := seedLoanType(t, store) // min 1000, max tenure 60

	t.Run("exceeds global ceiling", func(t *testing.T) {
		_, err := svc.SubmitApplication(customer.ID, lt.ID, dec("5000000.01"), 12)
		require.True(t, apperr.IsKind(err, apperr.KindBusinessRule), "got %v", err)
		assert.Contains(t, err.Error(), "maximum loan amount")
	})
	t.Run("at global ceiling is allowed", func(t *testing.T) {
		_, err := svc.SubmitApplication(customer.ID, lt.ID, dec("5000000"), 12)
		assert.NoError(t, err)
	})
	t.Run("below type minimum", func(t *testing.T) {
		_, err := svc.SubmitApplication(customer.ID, lt.ID, dec("999.99"), 12)
		assert.True(t, apperr.IsKind(err, apperr.KindBusinessRule), "got %v", err)
	})
	t.Run("tenure above type maximum", func(t *testing.T) {
		_, err := svc.SubmitApplication(customer.ID, lt.ID, dec("5000"), 61)
		assert.True(t, apperr.IsKind(err, apperr.KindBusinessRule), "got %v", err)
	})
	t.Run("unknown loan type", func(t *testing.T) {
		_, err := svc.SubmitApplication(customer.ID, 9999, dec("5000"), 12)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "got %v", err)
	})
}

func TestSubmitApplication_LowCreditScore(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	customer := seedCustomer(t, store, 649) // Threshold is 650
	seedManager(t, store)
	lt := seedLoanType(t, store)

	_, err := svc.SubmitApplication(customer.ID, lt.ID, dec("5000"), 12)
	require.True(t, apperr.IsKind(err, apperr.KindBusinessRule), "got %v", err)
	assert.Contains(t, err.Error(), "credit score")
}

func TestSubmitApplication_Cooldown(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	customer := seedCustomer(t, store, 700)
	manager := seedManager(t, store)
	lt := seedLoanType(t, store)

	previous := &models.LoanApplication{
		ApplicationNumber: "APP-0000000001",
		CustomerID:        customer.ID,
		LoanTypeID:        lt.ID,
		RequestedAmount:   dec("5000"),
		RequestedTenure:   12,
		Status:            models.ApplicationStatusRejected,
		AssignedTo:        manager.ID,
		CreatedAt:         testNow.AddDate(0, 0, -14),
	}
	require.NoError(t, store.CreateApplication(previous))

	// 14 days since the previous application: still inside the window.
	_, err := svc.SubmitApplication(customer.ID, lt.ID, dec("5000"), 12)
	require.True(t, apperr.IsKind(err, apperr.KindBusinessRule), "got %v", err)
	assert.Contains(t, err.Error(), "15 days")

	// Exactly 15 days: the boundary is inclusive.
	previous.CreatedAt = testNow.AddDate(0, 0, -15)
	_, err = svc.SubmitApplication(customer.ID, lt.ID, dec("5000"), 12)
	assert.NoError(t, err)
}

func TestSubmitApplication_NoManagerAvailable(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	customer := seedCustomer(t, store, 700)
	lt := seedLoanType(t, store)

	_, err := svc.SubmitApplication(customer.ID, lt.ID, dec("5000"), 12)
	require.True(t, apperr.IsKind(err, apperr.KindBusinessRule), "got %v", err)
	assert.Contains(t, err.Error(), "no managers available")
}

func submitPending(t *testing.T, svc *Service, store *memStore) *models.LoanApplication {
	t.Helper()
	customer := seedCustomer(t, store, 700)
	seedManager(t, store)
	lt := seedLoanType(t, store)
	app, err := svc.SubmitApplication(customer.ID, lt.ID, dec("50000"), 24)
	require.NoError(t, err)
	return app
}

func TestReviewApplication_Approve(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	app := submitPending(t, svc, store)

	reviewed, err := svc.ReviewApplication(app.AssignedTo, models.RoleManager, app.ApplicationNumber, true, dec("45000"), "approved with a haircut")
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.ApprovedAmount)
	assert.True(t, reviewed.ApprovedAmount.Equal(dec("45000")))
	require.NotNil(t, reviewed.ReviewedAt)
	assert.Equal(t, testNow, *reviewed.ReviewedAt)

	require.Len(t, store.loans, 1)
	var loan *models.Loan
	for _, l := range store.loans {
		loan = l
	}
	assert.True(t, utils.ValidLoanNumber(loan.LoanNumber))
	assert.Equal(t, app.ID, loan.ApplicationID)
	assert.Equal(t, app.CustomerID, loan.CustomerID)
	assert.True(t, loan.Principal.Equal(dec("45000")))
	assert.True(t, loan.PrincipalRemaining.Equal(dec("45000")))
	assert.True(t, loan.InterestRate.Equal(dec("12.00")), "rate is copied from the loan type at approval")
	assert.Equal(t, 24, loan.TenureInMonths)
	assert.Equal(t, testNow, loan.StartDate)
	assert.Equal(t, models.LoanStatusActive, loan.Status)
}

func TestReviewApplication_Reject(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	app := submitPending(t, svc, store)

	_, err := svc.ReviewApplication(app.AssignedTo, models.RoleManager, app.ApplicationNumber, false, decimal.Zero, "   ")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation), "rejection requires comments, got %v", err)

	reviewed, err := svc.ReviewApplication(app.AssignedTo, models.RoleManager, app.ApplicationNumber, false, decimal.Zero, "income not verified")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, reviewed.Status)
	assert.Equal(t, "income not verified", reviewed.ManagerComments)
	assert.Empty(t, store.loans, "rejection must not create a loan")
}

func TestReviewApplication_ApprovedAmountBounds(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	app := submitPending(t, svc, store) // requested 50000, type minimum 1000

	_, err := svc.ReviewApplication(app.AssignedTo, models.RoleManager, app.ApplicationNumber, true, dec("50000.01"), "")
	assert.True(t, apperr.IsKind(err, apperr.KindBusinessRule), "above requested, got %v", err)

	_, err = svc.ReviewApplication(app.AssignedTo, models.RoleManager, app.ApplicationNumber, true, dec("999"), "")
	assert.True(t, apperr.IsKind(err, apperr.KindBusinessRule), "below type minimum, got %v", err)

	_, err = svc.ReviewApplication(app.AssignedTo, models.RoleManager, app.ApplicationNumber, true, decimal.Zero, "")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation), "non-positive, got %v", err)

	stored, err := store.FindApplicationByNumber(app.ApplicationNumber)
	require.NoError(t, err)
	assert.True(t, stored.IsPending(), "failed reviews must leave the application pending")
	assert.Empty(t, store.loans)
}

func TestReviewApplication_Authorization(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	app := submitPending(t, svc, store)

	other := &models.User{Name: "Other Manager", Email: "other@example.com", Role: models.RoleManager, Active: true}
	require.NoError(t, store.CreateUser(other))

	_, err := svc.ReviewApplication(other.ID, models.RoleManager, app.ApplicationNumber, false, decimal.Zero, "nope")
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden), "unassigned manager, got %v", err)

	_, err = svc.ReviewApplication(app.CustomerID, models.RoleCustomer, app.ApplicationNumber, false, decimal.Zero, "nope")
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden), "customer, got %v", err)

	// Any admin may review regardless of assignment.
	_, err = svc.ReviewApplication(other.ID, models.RoleAdmin, app.ApplicationNumber, true, dec("50000"), "")
	assert.NoError(t, err)
}

func TestReviewApplication_AlreadyReviewed(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	app := submitPending(t, svc, store)

	_, err := svc.ReviewApplication(app.AssignedTo, models.RoleManager, app.ApplicationNumber, false, decimal.Zero, "first decision")
	require.NoError(t, err)

	_, err = svc.ReviewApplication(app.AssignedTo, models.RoleManager, app.ApplicationNumber, true, dec("50000"), "")
	require.True(t, apperr.IsKind(err, apperr.KindBusinessRule), "got %v", err)
	assert.Contains(t, err.Error(), "already reviewed")
	assert.Empty(t, store.loans)
}

func TestReviewApplication_BadNumber(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	seedManager(t, store)

	_, err := svc.ReviewApplication(1, models.RoleManager, "not-a-number", true, dec("1000"), "")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)

	_, err = svc.ReviewApplication(1, models.RoleManager, "APP-0000000000", true, dec("1000"), "")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "got %v", err)
}

func TestGetApplication_Visibility(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	app := submitPending(t, svc, store)

	stranger := &models.User{Name: "Stranger", Email: "stranger@example.com", Role: models.RoleCustomer, CreditScore: 700, Active: true}
	require.NoError(t, store.CreateUser(stranger))

	got, err := svc.GetApplication(app.CustomerID, models.RoleCustomer, app.ApplicationNumber)
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)

	_, err = svc.GetApplication(stranger.ID, models.RoleCustomer, app.ApplicationNumber)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "another customer must not see it, got %v", err)

	_, err = svc.GetApplication(stranger.ID, models.RoleManager, app.ApplicationNumber)
	assert.NoError(t, err, "staff may see any application")
}
