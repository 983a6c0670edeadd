package handler

import (
	"encoding/json"
	"net/http"

	"github.com/akotov/loan-service/internal/apperr"
	"github.com/akotov/loan-service/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			h.log.Errorf("Failed to encode response: %v", err)
		}
	}
}

// respondError maps business-error kinds to HTTP status codes. The business
// layer knows nothing about transport.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindBusinessRule:
		status = http.StatusUnprocessableEntity
	case apperr.KindAuthentication:
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		h.log.Errorf("Unexpected error: %v", err)
		h.respond(w, status, map[string]string{"error": "internal server error"})
		return
	}
	h.respond(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, apperr.Validation("invalid request body: %v", err))
		return false
	}
	return true
}
