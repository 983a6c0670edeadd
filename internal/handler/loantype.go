package handler

import (
	"net/http"
	"strconv"

	"github.com/akotov/loan-service/internal/apperr"
	"github.com/akotov/loan-service/internal/models"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type loanTypeRequest struct {
	Name              string          `json:"name"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	MinAmount         decimal.Decimal `json:"min_amount"`
	MaxTenureInMonths int             `json:"max_tenure_in_months"`
}

type previewEmiRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	TenureInMonths int             `json:"tenure_in_months"`
}

// CreateLoanType handles catalog creation (admin)
func (h *Handler) CreateLoanType(w http.ResponseWriter, r *http.Request) {
	var req loanTypeRequest
	if !h.decode(w, r, &req) {
		return
	}
	lt, err := h.svc.CreateLoanType(&models.LoanType{
		Name:              req.Name,
		InterestRate:      req.InterestRate,
		MinAmount:         req.MinAmount,
		MaxTenureInMonths: req.MaxTenureInMonths,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, lt)
}

// UpdateLoanType handles catalog updates (admin)
func (h *Handler) UpdateLoanType(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req loanTypeRequest
	if !h.decode(w, r, &req) {
		return
	}
	lt, err := h.svc.UpdateLoanType(&models.LoanType{
		ID:                id,
		Name:              req.Name,
		InterestRate:      req.InterestRate,
		MinAmount:         req.MinAmount,
		MaxTenureInMonths: req.MaxTenureInMonths,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, lt)
}

// ListLoanTypes returns the loan catalog
func (h *Handler) ListLoanTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.ListLoanTypes()
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, types)
}

// GetLoanType returns one catalog entry
func (h *Handler) GetLoanType(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	lt, err := h.svc.GetLoanType(id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, lt)
}

// PreviewEmi returns the schedule a loan would have at the type's current rate
func (h *Handler) PreviewEmi(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req previewEmiRequest
	if !h.decode(w, r, &req) {
		return
	}
	schedule, err := h.svc.PreviewEmi(id, req.Amount, req.TenureInMonths)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, schedule)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		h.respondError(w, apperr.Validation("invalid %s: %v", name, err))
		return 0, false
	}
	return id, true
}
