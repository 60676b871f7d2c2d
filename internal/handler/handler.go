// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/plumecms/cloud/internal/handler/dto"
	"github.com/plumecms/cloud/internal/policy"
	"github.com/plumecms/cloud/internal/service"
)

// Handler serves the unauthenticated root endpoints.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello identifies the service.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"service": "plume-cloud",
		"version": "0.1.0",
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = err
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps service and policy errors to HTTP responses.
// Authorization and validation messages are surfaced to the caller;
// everything else becomes a generic 500.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", ve.Error())
	case policy.Denied(err):
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", err.Error())
	case errors.Is(err, service.ErrSlugTaken):
		writeError(w, http.StatusConflict, "SLUG_TAKEN", err.Error())
	case errors.Is(err, service.ErrWorkspaceNotFound):
		writeError(w, http.StatusNotFound, "WORKSPACE_NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrMemberNotFound):
		writeError(w, http.StatusNotFound, "MEMBER_NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrInvitationNotFound):
		writeError(w, http.StatusNotFound, "INVITATION_NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrNotMember):
		writeError(w, http.StatusForbidden, "NOT_MEMBER", err.Error())
	case errors.Is(err, service.ErrEmailMismatch):
		writeError(w, http.StatusForbidden, "EMAIL_MISMATCH", err.Error())
	case errors.Is(err, service.ErrAlreadyMember):
		writeError(w, http.StatusConflict, "ALREADY_MEMBER", err.Error())
	case errors.Is(err, service.ErrInvitePending):
		writeError(w, http.StatusConflict, "INVITATION_PENDING", err.Error())
	case errors.Is(err, service.ErrInvitationExpired):
		writeError(w, http.StatusConflict, "INVITATION_EXPIRED", err.Error())
	case errors.Is(err, service.ErrInvitationUsed):
		writeError(w, http.StatusConflict, "INVITATION_USED", err.Error())
	case errors.Is(err, service.ErrProvisionFailed):
		logger.Error("provisioning_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "PROVISIONING_FAILED", "Database provisioning failed")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
