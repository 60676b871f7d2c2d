// Package model defines domain entities for the control plane.
package model

import "time"

// PlanTier identifies the subscription plan of a workspace.
type PlanTier string

const (
	PlanFree  PlanTier = "free"
	PlanPro   PlanTier = "pro"
	PlanScale PlanTier = "scale"
)

// ValidPlans contains all valid plan tiers.
var ValidPlans = []PlanTier{PlanFree, PlanPro, PlanScale}

// IsValid checks if the plan tier is a known value.
func (p PlanTier) IsValid() bool {
	for _, plan := range ValidPlans {
		if p == plan {
			return true
		}
	}
	return false
}

// Entitlements returns the feature entitlements granted by the plan.
// Recorded on the subscription row when billing activates a plan.
func (p PlanTier) Entitlements() []string {
	switch p {
	case PlanPro:
		return []string{"custom-domains", "advanced-roles", "webhooks"}
	case PlanScale:
		return []string{"custom-domains", "advanced-roles", "webhooks", "audit-log", "sso"}
	default:
		return []string{}
	}
}

// Workspace represents a tenant's isolated content environment.
// Each workspace is backed by its own provisioned database.
type Workspace struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Slug             string            `json:"slug"` // Immutable after creation
	Plan             PlanTier          `json:"plan"`
	NeonProjectID    string            `json:"-"`
	DatabaseURL      string            `json:"-"`
	PoolerURL        string            `json:"-"`
	StripeCustomerID string            `json:"-"`
	Settings         map[string]string `json:"settings,omitempty"`
	Suspended        bool              `json:"suspended"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// MaxWorkspaceNameLength bounds workspace display names.
const MaxWorkspaceNameLength = 100

// ValidName reports whether a workspace display name is acceptable.
func ValidName(name string) bool {
	return len(name) >= 1 && len(name) <= MaxWorkspaceNameLength
}

// WorkspaceWithRole pairs a workspace with the caller's membership role.
type WorkspaceWithRole struct {
	Workspace
	Role Role `json:"role"`
}
