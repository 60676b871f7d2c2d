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

// MemberHandler handles workspace membership endpoints.
type MemberHandler struct {
	members *service.MemberService
	logger  *slog.Logger
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(members *service.MemberService, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{
		members: members,
		logger:  logger,
	}
}

// List handles GET /api/workspaces/{slug}/members.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	members, err := h.members.ListMembers(r.Context(), slug, principal.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	response := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		response = append(response, dto.ToMemberResponse(m))
	}
	writeJSON(w, http.StatusOK, response)
}

// ChangeRole handles PATCH /api/workspaces/{slug}/members/{userID}.
func (h *MemberHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	slug := chi.URLParam(r, "slug")
	targetID := chi.URLParam(r, "userID")

	var req dto.ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	member, err := h.members.ChangeRole(r.Context(), slug, principal.UserID, targetID, model.Role(req.Role))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("member_role_changed",
		"slug", slug,
		"target_id", targetID,
		"new_role", req.Role,
		"actor_id", principal.UserID,
	)

	writeJSON(w, http.StatusOK, member)
}

// Remove handles DELETE /api/workspaces/{slug}/members/{userID}.
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	slug := chi.URLParam(r, "slug")
	targetID := chi.URLParam(r, "userID")

	if err := h.members.RemoveMember(r.Context(), slug, principal.UserID, targetID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("member_removed",
		"slug", slug,
		"target_id", targetID,
		"actor_id", principal.UserID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// Leave handles POST /api/workspaces/{slug}/members/leave.
func (h *MemberHandler) Leave(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	if err := h.members.Leave(r.Context(), slug, principal.UserID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("member_left", "slug", slug, "user_id", principal.UserID)

	w.WriteHeader(http.StatusNoContent)
}
