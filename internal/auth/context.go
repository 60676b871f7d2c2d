package auth

import (
	"context"

	"github.com/plumecms/cloud/internal/model"
)

// Principal is the authenticated identity attached to a request by the
// session middleware.
type Principal struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	SessionID string `json:"session_id"`
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const principalContextKey contextKey = "principal"

// ContextWithPrincipal adds the authenticated principal to the context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext retrieves the principal from the context.
// Returns nil if the request is unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, ok := ctx.Value(principalContextKey).(*Principal)
	if !ok {
		return nil
	}
	return p
}

// UserIDFromContext is a convenience accessor for the session user ID.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	p := PrincipalFromContext(ctx)
	if p == nil {
		return ""
	}
	return p.UserID
}

// PrincipalFromUser builds a principal for a freshly issued session.
func PrincipalFromUser(u *model.User, sessionID string) *Principal {
	return &Principal{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		SessionID: sessionID,
	}
}
