package handler

import (
	"net/http"
	"strings"

	"github.com/akotov/loan-service/internal/middleware"
	"github.com/akotov/loan-service/internal/models"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type makePaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// MakePayment applies a payment against the caller's loan
func (h *Handler) MakePayment(w http.ResponseWriter, r *http.Request) {
	var req makePaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	receipt, err := h.svc.MakePayment(
		middleware.UserIDFromContext(r.Context()),
		mux.Vars(r)["number"],
		req.Amount,
	)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, receipt)
}

// GetDueEmis returns a loan's unpaid installments, upcoming or overdue
func (h *Handler) GetDueEmis(w http.ResponseWriter, r *http.Request) {
	filter := models.EmiStatusFilter(strings.ToUpper(r.URL.Query().Get("status")))
	if filter == "" {
		filter = models.EmiFilterUpcoming
	}
	ctx := r.Context()
	emis, err := h.svc.GetDueEmis(
		middleware.UserIDFromContext(ctx),
		middleware.RoleFromContext(ctx),
		mux.Vars(r)["number"],
		filter,
	)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, emis)
}

// ListLoans returns the caller's loans
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.ListLoans(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, loans)
}

// ListPayments returns the payment history for a loan
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	payments, err := h.svc.ListPayments(
		middleware.UserIDFromContext(ctx),
		middleware.RoleFromContext(ctx),
		mux.Vars(r)["number"],
	)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, payments)
}
