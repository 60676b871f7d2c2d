// Package model defines domain entities for the control plane.
package model

import (
	"strings"
	"time"
)

// User represents a cloud account holder.
// Email is stored lowercase and is unique across the platform.
type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"` // Empty for OAuth-only accounts
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	Image           string     `json:"image,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an email address.
// All email comparisons in the control plane are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasPassword returns true if the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
