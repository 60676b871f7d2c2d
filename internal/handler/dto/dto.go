// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/plumecms/cloud/internal/model"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SignupRequest represents the request body for account creation.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents an account in API responses.
type UserResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	Image         string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToUserResponse converts a user model to its API shape.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		EmailVerified: u.EmailVerifiedAt != nil,
		Image:         u.Image,
		CreatedAt:     u.CreatedAt,
	}
}

// SessionResponse is returned on login. The token doubles as a bearer
// credential for non-browser clients; browsers get it as a cookie.
type SessionResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// CreateWorkspaceRequest represents the request body for creating a
// workspace. Slug is optional; one is derived from the name when
// omitted.
type CreateWorkspaceRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
	Plan string `json:"plan,omitempty"`
}

// UpdateWorkspaceRequest represents the request body for updating a
// workspace. The slug is immutable.
type UpdateWorkspaceRequest struct {
	Name     *string           `json:"name,omitempty"`
	Settings map[string]string `json:"settings,omitempty"`
}

// WorkspaceResponse represents a workspace in API responses, with the
// caller's role attached.
type WorkspaceResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Slug      string            `json:"slug"`
	Plan      string            `json:"plan"`
	Role      string            `json:"role"`
	Suspended bool              `json:"suspended"`
	Settings  map[string]string `json:"settings,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ToWorkspaceResponse converts a workspace with role to its API shape.
func ToWorkspaceResponse(ws *model.WorkspaceWithRole) WorkspaceResponse {
	return WorkspaceResponse{
		ID:        ws.ID,
		Name:      ws.Name,
		Slug:      ws.Slug,
		Plan:      string(ws.Plan),
		Role:      string(ws.Role),
		Suspended: ws.Suspended,
		Settings:  ws.Settings,
		CreatedAt: ws.CreatedAt,
		UpdatedAt: ws.UpdatedAt,
	}
}

// MemberResponse represents a workspace member with profile data.
type MemberResponse struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Image    string    `json:"image,omitempty"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// ToMemberResponse converts a member with user data to its API shape.
func ToMemberResponse(m *model.MemberWithUser) MemberResponse {
	return MemberResponse{
		UserID:   m.UserID,
		Name:     m.Name,
		Email:    m.Email,
		Image:    m.Image,
		Role:     string(m.Role),
		JoinedAt: m.CreatedAt,
	}
}

// ChangeRoleRequest represents the request body for changing a
// member's role.
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// CreateInvitationRequest represents the request body for inviting a
// member.
type CreateInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// InvitationResponse represents an invitation in API responses. Token
// is only populated on creation; storage keeps a hash.
type InvitationResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	InviterID  string     `json:"inviter_id"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	Token      string     `json:"token,omitempty"`
}

// ToInvitationResponse converts an invitation to its API shape.
func ToInvitationResponse(inv *model.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:         inv.ID,
		Email:      inv.Email,
		Role:       string(inv.Role),
		InviterID:  inv.InviterID,
		ExpiresAt:  inv.ExpiresAt,
		AcceptedAt: inv.AcceptedAt,
		CreatedAt:  inv.CreatedAt,
	}
}
