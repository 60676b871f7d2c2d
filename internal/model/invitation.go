package model

import "time"

// InvitationTTL is how long an invitation remains acceptable.
const InvitationTTL = 7 * 24 * time.Hour

// Invitation represents a pending offer to join a workspace with a
// predetermined role. The invitation token is stored hashed; the
// plaintext is returned once at creation time.
type Invitation struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspace_id"`
	Email       string     `json:"email"` // Lowercase
	Role        Role       `json:"role"`
	TokenHash   string     `json:"-"`
	InviterID   string     `json:"inviter_id"`
	ExpiresAt   time.Time  `json:"expires_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsAccepted returns true if the invitation has already been redeemed.
func (i *Invitation) IsAccepted() bool {
	return i.AcceptedAt != nil
}

// IsExpired returns true if the invitation is past its expiry.
// Expiry is checked lazily at acceptance time; expired rows are not swept.
func (i *Invitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// Pending returns true if the invitation can still be accepted.
func (i *Invitation) Pending() bool {
	return !i.IsAccepted() && !i.IsExpired()
}
