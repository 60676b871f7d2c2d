package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/plumecms/cloud/internal/handler/dto"
	"github.com/plumecms/cloud/internal/middleware"
	"github.com/plumecms/cloud/internal/service"
)

// AuthHandler handles signup, login, and logout.
type AuthHandler struct {
	accounts   *service.AccountService
	logger     *slog.Logger
	sessionTTL time.Duration
	secure     bool
}

// NewAuthHandler creates a new AuthHandler. secure controls the
// session cookie's Secure flag and should be true outside development.
func NewAuthHandler(accounts *service.AccountService, logger *slog.Logger, sessionTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{
		accounts:   accounts,
		logger:     logger,
		sessionTTL: sessionTTL,
		secure:     secure,
	}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.accounts.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_signed_up", "user_id", user.ID)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.setSessionCookie(w, token, h.sessionTTL)

	h.logger.Info("user_logged_in", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.SessionResponse{
		User:  dto.ToUserResponse(user),
		Token: token,
	})
}

// Logout handles POST /api/auth/logout. Always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := sessionTokenFromRequest(r)
	if err := h.accounts.Logout(r.Context(), token); err != nil {
		h.logger.Warn("logout_failed", "error", err)
	}

	// Expire the cookie regardless of backend outcome.
	h.setSessionCookie(w, "", -time.Hour)

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
