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

// WorkspaceHandler handles workspace lifecycle endpoints.
type WorkspaceHandler struct {
	workspaces *service.WorkspaceService
	logger     *slog.Logger
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(workspaces *service.WorkspaceService, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaces: workspaces,
		logger:     logger,
	}
}

// Create handles POST /api/workspaces.
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	var req dto.CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	ws, err := h.workspaces.CreateWorkspace(r.Context(), service.CreateWorkspaceInput{
		Name:       req.Name,
		Slug:       req.Slug,
		Plan:       model.PlanTier(req.Plan),
		OwnerID:    principal.UserID,
		OwnerEmail: principal.Email,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("workspace_created",
		"workspace_id", ws.ID,
		"slug", ws.Slug,
		"owner_id", principal.UserID,
	)

	writeJSON(w, http.StatusCreated, dto.ToWorkspaceResponse(ws))
}

// List handles GET /api/workspaces.
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	workspaces, err := h.workspaces.ListWorkspaces(r.Context(), principal.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	response := make([]dto.WorkspaceResponse, 0, len(workspaces))
	for _, ws := range workspaces {
		response = append(response, dto.ToWorkspaceResponse(ws))
	}
	writeJSON(w, http.StatusOK, response)
}

// Get handles GET /api/workspaces/{slug}.
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	ws, err := h.workspaces.GetWorkspace(r.Context(), slug, principal.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToWorkspaceResponse(ws))
}

// Update handles PATCH /api/workspaces/{slug}.
func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	var req dto.UpdateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	ws, err := h.workspaces.UpdateWorkspace(r.Context(), slug, principal.UserID, service.UpdateWorkspaceInput{
		Name:     req.Name,
		Settings: req.Settings,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToWorkspaceResponse(ws))
}

// Delete handles DELETE /api/workspaces/{slug}.
func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	if err := h.workspaces.DeleteWorkspace(r.Context(), slug, principal.UserID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("workspace_deleted", "slug", slug, "actor_id", principal.UserID)

	w.WriteHeader(http.StatusNoContent)
}
