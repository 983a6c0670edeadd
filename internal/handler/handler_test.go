package handler

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/akotov/loan-service/internal/apperr"
	"github.com/akotov/loan-service/internal/config"
	"github.com/akotov/loan-service/internal/repository"
	"github.com/akotov/loan-service/internal/service"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{
		JWTSecret:               "test-secret",
		MaxLoanAmount:           decimal.NewFromInt(5000000),
		MinCreditScore:          650,
		ApplicationCooldownDays: 15,
		PenaltyDailyRatePct:     decimal.RequireFromString("0.10"),
	}
	svc := service.NewService(repository.NewRepository(db), log, cfg, nil)
	return NewHandler(svc, log), mock
}

func TestRespondError_StatusMapping(t *testing.T) {
	h, _ := newTestHandler(t)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validation("bad input"), http.StatusBadRequest},
		{"not found", apperr.NotFound("missing"), http.StatusNotFound},
		{"forbidden", apperr.Forbidden("not yours"), http.StatusForbidden},
		{"business rule", apperr.BusinessRule("rule broken"), http.StatusUnprocessableEntity},
		{"authentication", apperr.Authentication("who are you"), http.StatusUnauthorized},
		{"unexpected", apperr.Unexpected(errors.New("boom"), "db down"), http.StatusInternalServerError},
		{"foreign error", errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.respondError(rec, tc.err)
			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestRespondError_HidesInternalDetail(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.respondError(rec, apperr.Unexpected(errors.New("pq: connection refused"), "failed to load loan"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestRegister_EndToEnd(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`INSERT INTO loan\.users`).
		WithArgs("Alice", "alice@example.com", sqlmock.AnyArg(), "customer", 680, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	body := `{"name": "Alice", "email": "alice@example.com", "password": "supersecret"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alice@example.com"`)
	assert.NotContains(t, rec.Body.String(), "password", "the hash must never be serialized")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_InvalidBody(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_ShortPassword(t *testing.T) {
	h, mock := newTestHandler(t)

	body := `{"name": "Alice", "email": "alice@example.com", "password": "short"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet(), "nothing may reach the store")
}
