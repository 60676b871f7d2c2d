package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plumecms/cloud/internal/auth"
	"github.com/plumecms/cloud/internal/handler/dto"
	"github.com/plumecms/cloud/internal/model"
	"github.com/plumecms/cloud/internal/service"
)

// InvitationHandler handles invitation lifecycle endpoints.
type InvitationHandler struct {
	invitations *service.InvitationService
	logger      *slog.Logger
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(invitations *service.InvitationService, logger *slog.Logger) *InvitationHandler {
	return &InvitationHandler{
		invitations: invitations,
		logger:      logger,
	}
}

// Create handles POST /api/workspaces/{slug}/invitations.
// The response carries the plaintext token; there is no email delivery
// here, the caller forwards the invitation link.
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	var req dto.CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	created, err := h.invitations.CreateInvitation(r.Context(), slug, principal.UserID, req.Email, model.Role(req.Role))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("invitation_created",
		"slug", slug,
		"invitation_id", created.Invitation.ID,
		"role", req.Role,
		"actor_id", principal.UserID,
	)

	response := dto.ToInvitationResponse(created.Invitation)
	response.Token = created.Token
	writeJSON(w, http.StatusCreated, response)
}

// List handles GET /api/workspaces/{slug}/invitations.
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	invitations, err := h.invitations.ListInvitations(r.Context(), slug, principal.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	response := make([]dto.InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		response = append(response, dto.ToInvitationResponse(inv))
	}
	writeJSON(w, http.StatusOK, response)
}

// Revoke handles DELETE /api/workspaces/{slug}/invitations/{id}.
func (h *InvitationHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	slug := chi.URLParam(r, "slug")
	id := chi.URLParam(r, "id")

	if err := h.invitations.RevokeInvitation(r.Context(), slug, principal.UserID, id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("invitation_revoked", "slug", slug, "invitation_id", id, "actor_id", principal.UserID)

	w.WriteHeader(http.StatusNoContent)
}

// Preview handles GET /api/invitations/{token}. Unauthenticated; shows
// invitation details before requiring login.
func (h *InvitationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	preview, err := h.invitations.PreviewInvitation(r.Context(), token)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

// Accept handles POST /api/invitations/{token}/accept.
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	token := chi.URLParam(r, "token")

	ws, err := h.invitations.AcceptInvitation(r.Context(), token, principal.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("invitation_accepted",
		"workspace_id", ws.ID,
		"user_id", principal.UserID,
		"role", ws.Role,
	)

	writeJSON(w, http.StatusOK, dto.ToWorkspaceResponse(ws))
}
