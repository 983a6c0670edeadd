package handler

import (
	"net/http"
	"time"

	"github.com/akotov/loan-service/internal/middleware"
	"github.com/akotov/loan-service/internal/models"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type createApplicationRequest struct {
	LoanTypeID              int64           `json:"loan_type_id"`
	RequestedAmount         decimal.Decimal `json:"requested_amount"`
	RequestedTenureInMonths int             `json:"requested_tenure_in_months"`
}

type createApplicationResponse struct {
	ApplicationNumber string                   `json:"application_number"`
	Status            models.ApplicationStatus `json:"status"`
	CreatedDate       time.Time                `json:"created_date"`
}

type reviewRequest struct {
	IsApproved      bool            `json:"is_approved"`
	ApprovedAmount  decimal.Decimal `json:"approved_amount"`
	ManagerComments string          `json:"manager_comments"`
}

type reviewResponse struct {
	ApplicationNumber string                   `json:"application_number"`
	Status            models.ApplicationStatus `json:"status"`
	Remarks           string                   `json:"remarks"`
	ReviewedBy        int64                    `json:"reviewed_by"`
	ReviewedOn        *time.Time               `json:"reviewed_on"`
}

// SubmitApplication handles a customer filing a loan application
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req createApplicationRequest
	if !h.decode(w, r, &req) {
		return
	}
	customerID := middleware.UserIDFromContext(r.Context())
	app, err := h.svc.SubmitApplication(customerID, req.LoanTypeID, req.RequestedAmount, req.RequestedTenureInMonths)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, createApplicationResponse{
		ApplicationNumber: app.ApplicationNumber,
		Status:            app.Status,
		CreatedDate:       app.CreatedAt,
	})
}

// ReviewApplication handles a manager's decision on a pending application
func (h *Handler) ReviewApplication(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !h.decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	app, err := h.svc.ReviewApplication(
		middleware.UserIDFromContext(ctx),
		middleware.RoleFromContext(ctx),
		mux.Vars(r)["number"],
		req.IsApproved,
		req.ApprovedAmount,
		req.ManagerComments,
	)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, reviewResponse{
		ApplicationNumber: app.ApplicationNumber,
		Status:            app.Status,
		Remarks:           app.ManagerComments,
		ReviewedBy:        app.AssignedTo,
		ReviewedOn:        app.ReviewedAt,
	})
}

// GetApplication returns one application visible to the caller
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.svc.GetApplication(
		middleware.UserIDFromContext(ctx),
		middleware.RoleFromContext(ctx),
		mux.Vars(r)["number"],
	)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, app)
}

// ListMyApplications returns the caller's applications
func (h *Handler) ListMyApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.ListCustomerApplications(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, apps)
}

// ListAssignedApplications returns the applications assigned to the caller
func (h *Handler) ListAssignedApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.ListAssignedApplications(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, apps)
}
