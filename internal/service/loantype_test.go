package service

import (
	"testing"

	"github.com/akotov/loan-service/internal/apperr"
	"github.com/akotov/loan-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLoanType(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	lt, err := svc.CreateLoanType(&models.LoanType{
		Name:              "  Home Loan  ",
		InterestRate:      dec("8.50"),
		MinAmount:         dec("100000"),
		MaxTenureInMonths: 360,
	})
	require.NoError(t, err)
	assert.Equal(t, "Home Loan", lt.Name, "name is trimmed")
	assert.NotZero(t, lt.ID)

	listed, err := svc.ListLoanTypes()
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, lt.ID, listed[0].ID)
}

func TestCreateLoanType_Validation(t *testing.T) {
	svc := newTestService(newMemStore())

	cases := []struct {
		name string
		lt   models.LoanType
	}{
		{"empty name", models.LoanType{Name: "  ", InterestRate: dec("10"), MinAmount: dec("1000"), MaxTenureInMonths: 12}},
		{"zero rate", models.LoanType{Name: "X", InterestRate: dec("0"), MinAmount: dec("1000"), MaxTenureInMonths: 12}},
		{"rate above 100", models.LoanType{Name: "X", InterestRate: dec("100.01"), MinAmount: dec("1000"), MaxTenureInMonths: 12}},
		{"zero minimum", models.LoanType{Name: "X", InterestRate: dec("10"), MinAmount: dec("0"), MaxTenureInMonths: 12}},
		{"zero tenure", models.LoanType{Name: "X", InterestRate: dec("10"), MinAmount: dec("1000"), MaxTenureInMonths: 0}},
		{"tenure above ceiling", models.LoanType{Name: "X", InterestRate: dec("10"), MinAmount: dec("1000"), MaxTenureInMonths: 481}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lt := tc.lt
			_, err := svc.CreateLoanType(&lt)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestUpdateLoanType(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	lt := seedLoanType(t, store)

	lt.InterestRate = dec("14.00")
	updated, err := svc.UpdateLoanType(lt)
	require.NoError(t, err)
	assert.True(t, updated.InterestRate.Equal(dec("14.00")))

	_, err = svc.UpdateLoanType(&models.LoanType{
		ID:                9999,
		Name:              "Ghost",
		InterestRate:      dec("10"),
		MinAmount:         dec("1000"),
		MaxTenureInMonths: 12,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "got %v", err)
}

func TestUpdateLoanType_DoesNotAffectExistingLoans(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	app := submitPending(t, svc, store)
	lt := store.loanTypes[app.LoanTypeID]

	_, err := svc.ReviewApplication(app.AssignedTo, models.RoleManager, app.ApplicationNumber, true, dec("50000"), "")
	require.NoError(t, err)

	lt.InterestRate = dec("20.00")
	_, err = svc.UpdateLoanType(lt)
	require.NoError(t, err)

	loans, err := svc.ListLoans(app.CustomerID)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.True(t, loans[0].InterestRate.Equal(dec("12.00")), "loan keeps the rate copied at approval")
}

func TestPreviewEmi(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	lt := seedLoanType(t, store) // 12.00%, min 1000, max tenure 60

	items, err := svc.PreviewEmi(lt.ID, dec("10000"), 12)
	require.NoError(t, err)
	require.Len(t, items, 12)
	assert.Equal(t, testNow.AddDate(0, 1, 0), items[0].DueDate)
	assert.True(t, items[11].PrincipalRemaining.IsZero())
	assert.Empty(t, store.loans, "preview must not create anything")
	assert.Empty(t, store.apps)
}

func TestPreviewEmi_Bounds(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	lt := seedLoanType(t, store)

	_, err := svc.PreviewEmi(lt.ID, dec("999"), 12)
	assert.True(t, apperr.IsKind(err, apperr.KindBusinessRule), "below minimum, got %v", err)

	_, err = svc.PreviewEmi(lt.ID, dec("10000"), 61)
	assert.True(t, apperr.IsKind(err, apperr.KindBusinessRule), "tenure too long, got %v", err)

	_, err = svc.PreviewEmi(9999, dec("10000"), 12)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "unknown type, got %v", err)

	_, err = svc.PreviewEmi(lt.ID, dec("10000"), 0)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation), "zero tenure, got %v", err)
}
