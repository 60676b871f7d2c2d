package model

import "time"

// Role is a workspace membership role, highest to lowest privilege:
// owner > admin > editor > viewer.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// ValidRoles contains all valid role values.
var ValidRoles = []Role{RoleOwner, RoleAdmin, RoleEditor, RoleViewer}

// roleLevels orders roles by privilege. Higher wins.
var roleLevels = map[Role]int{
	RoleOwner:  4,
	RoleAdmin:  3,
	RoleEditor: 2,
	RoleViewer: 1,
}

// IsValid checks if the role is a known value.
func (r Role) IsValid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the privilege level of the role. Unknown roles are 0.
func (r Role) Level() int {
	return roleLevels[r]
}

// AtLeast reports whether the role has privilege greater than or equal
// to the given role.
func (r Role) AtLeast(min Role) bool {
	return r.Level() >= min.Level()
}

// Member represents a user's membership in a workspace.
// (workspace_id, user_id) is the composite key. Exactly one member per
// workspace holds the owner role; this is enforced by the policy layer,
// not by a database constraint.
type Member struct {
	WorkspaceID string    `json:"workspace_id"`
	UserID      string    `json:"user_id"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MemberWithUser pairs a membership row with the member's profile,
// as returned by the member-listing endpoint.
type MemberWithUser struct {
	Member
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}
