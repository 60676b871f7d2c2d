// Package policy centralizes the workspace role authorization matrix.
// Every membership and invitation mutation is gated here, in isolation
// from persistence, so the full matrix is unit-testable.
package policy

import (
	"errors"

	"github.com/plumecms/cloud/internal/model"
)

// Authorization errors. Messages are surfaced directly to the caller.
var (
	ErrNotManager        = errors.New("only owners and admins can manage members")
	ErrAdminInviteAdmin  = errors.New("only the owner can invite an admin")
	ErrAdminPromoteAdmin = errors.New("only the owner can promote a member to admin")
	ErrOwnerImmutable    = errors.New("the owner's role cannot be changed")
	ErrOwnerIrremovable  = errors.New("the owner cannot be removed from the workspace")
	ErrAdminOnAdmin      = errors.New("admins cannot modify other admins")
	ErrSelfChange        = errors.New("you cannot change your own membership")
	ErrOwnerCannotLeave  = errors.New("the owner cannot leave the workspace; transfer ownership or delete it")
	ErrInviteOwner       = errors.New("the owner role cannot be granted by invitation")
	ErrNotOwner          = errors.New("only the owner can do this")
)

var denials = []error{
	ErrNotManager, ErrAdminInviteAdmin, ErrAdminPromoteAdmin,
	ErrOwnerImmutable, ErrOwnerIrremovable, ErrAdminOnAdmin,
	ErrSelfChange, ErrOwnerCannotLeave, ErrInviteOwner, ErrNotOwner,
}

// Denied reports whether err is one of the authorization errors above.
func Denied(err error) bool {
	for _, d := range denials {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}

// CanInvite reports whether an actor may invite a new member with the
// given role. Only owners and admins invite; only the owner can invite
// another admin; the owner role is never granted by invitation.
func CanInvite(actor, invited model.Role) error {
	if !actor.AtLeast(model.RoleAdmin) {
		return ErrNotManager
	}
	if invited == model.RoleOwner {
		return ErrInviteOwner
	}
	if invited == model.RoleAdmin && actor != model.RoleOwner {
		return ErrAdminInviteAdmin
	}
	return nil
}

// CanChangeRole reports whether an actor may change a target member's
// role to newRole. actorIsTarget marks a self-directed change, which is
// always blocked on the member-management path.
func CanChangeRole(actor, target, newRole model.Role, actorIsTarget bool) error {
	if !actor.AtLeast(model.RoleAdmin) {
		return ErrNotManager
	}
	if actorIsTarget {
		return ErrSelfChange
	}
	if target == model.RoleOwner {
		return ErrOwnerImmutable
	}
	if newRole == model.RoleOwner {
		// Ownership transfer is an explicit separate action, unimplemented.
		return ErrOwnerImmutable
	}
	if actor == model.RoleAdmin && target == model.RoleAdmin {
		return ErrAdminOnAdmin
	}
	if newRole == model.RoleAdmin && actor != model.RoleOwner {
		return ErrAdminPromoteAdmin
	}
	return nil
}

// CanRemove reports whether an actor may remove a target member.
func CanRemove(actor, target model.Role, actorIsTarget bool) error {
	if !actor.AtLeast(model.RoleAdmin) {
		return ErrNotManager
	}
	if actorIsTarget {
		return ErrSelfChange
	}
	if target == model.RoleOwner {
		return ErrOwnerIrremovable
	}
	if actor == model.RoleAdmin && target == model.RoleAdmin {
		return ErrAdminOnAdmin
	}
	return nil
}

// CanLeave reports whether a member may voluntarily leave the workspace.
func CanLeave(role model.Role) error {
	if role == model.RoleOwner {
		return ErrOwnerCannotLeave
	}
	return nil
}

// CanManageInvitations reports whether an actor may list or revoke
// invitations.
func CanManageInvitations(actor model.Role) error {
	if !actor.AtLeast(model.RoleAdmin) {
		return ErrNotManager
	}
	return nil
}

// CanUpdateWorkspace reports whether an actor may change workspace
// settings (name, settings map).
func CanUpdateWorkspace(actor model.Role) error {
	if !actor.AtLeast(model.RoleAdmin) {
		return ErrNotManager
	}
	return nil
}

// CanDeleteWorkspace reports whether an actor may delete the workspace.
func CanDeleteWorkspace(actor model.Role) error {
	if actor != model.RoleOwner {
		return ErrNotOwner
	}
	return nil
}
