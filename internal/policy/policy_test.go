package policy

import (
	"errors"
	"testing"

	"github.com/plumecms/cloud/internal/model"
)

func TestCanInvite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		actor   model.Role
		invited model.Role
		wantErr error
	}{
		{"owner_invites_admin", model.RoleOwner, model.RoleAdmin, nil},
		{"owner_invites_editor", model.RoleOwner, model.RoleEditor, nil},
		{"owner_invites_viewer", model.RoleOwner, model.RoleViewer, nil},
		{"admin_invites_editor", model.RoleAdmin, model.RoleEditor, nil},
		{"admin_invites_viewer", model.RoleAdmin, model.RoleViewer, nil},
		{"admin_invites_admin", model.RoleAdmin, model.RoleAdmin, ErrAdminInviteAdmin},
		{"editor_invites_viewer", model.RoleEditor, model.RoleViewer, ErrNotManager},
		{"viewer_invites_viewer", model.RoleViewer, model.RoleViewer, ErrNotManager},
		{"owner_invites_owner", model.RoleOwner, model.RoleOwner, ErrInviteOwner},
		{"admin_invites_owner", model.RoleAdmin, model.RoleOwner, ErrInviteOwner},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CanInvite(tt.actor, tt.invited)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CanInvite(%s, %s) = %v, want %v", tt.actor, tt.invited, err, tt.wantErr)
			}
		})
	}
}

func TestCanChangeRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		actor   model.Role
		target  model.Role
		newRole model.Role
		self    bool
		wantErr error
	}{
		{"owner_promotes_editor_to_admin", model.RoleOwner, model.RoleEditor, model.RoleAdmin, false, nil},
		{"owner_demotes_admin", model.RoleOwner, model.RoleAdmin, model.RoleViewer, false, nil},
		{"admin_promotes_viewer_to_editor", model.RoleAdmin, model.RoleViewer, model.RoleEditor, false, nil},
		{"admin_promotes_editor_to_admin", model.RoleAdmin, model.RoleEditor, model.RoleAdmin, false, ErrAdminPromoteAdmin},
		{"admin_demotes_admin", model.RoleAdmin, model.RoleAdmin, model.RoleEditor, false, ErrAdminOnAdmin},
		{"editor_changes_viewer", model.RoleEditor, model.RoleViewer, model.RoleEditor, false, ErrNotManager},
		{"owner_role_immutable", model.RoleOwner, model.RoleOwner, model.RoleAdmin, false, ErrOwnerImmutable},
		{"no_transfer_via_role_change", model.RoleOwner, model.RoleAdmin, model.RoleOwner, false, ErrOwnerImmutable},
		{"self_change_blocked", model.RoleAdmin, model.RoleAdmin, model.RoleViewer, true, ErrSelfChange},
		{"owner_self_change_blocked", model.RoleOwner, model.RoleOwner, model.RoleAdmin, true, ErrSelfChange},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CanChangeRole(tt.actor, tt.target, tt.newRole, tt.self)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CanChangeRole(%s, %s, %s, self=%v) = %v, want %v",
					tt.actor, tt.target, tt.newRole, tt.self, err, tt.wantErr)
			}
		})
	}
}

func TestCanRemove(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		actor   model.Role
		target  model.Role
		self    bool
		wantErr error
	}{
		{"owner_removes_admin", model.RoleOwner, model.RoleAdmin, false, nil},
		{"owner_removes_viewer", model.RoleOwner, model.RoleViewer, false, nil},
		{"admin_removes_editor", model.RoleAdmin, model.RoleEditor, false, nil},
		{"admin_removes_viewer", model.RoleAdmin, model.RoleViewer, false, nil},
		{"admin_removes_admin", model.RoleAdmin, model.RoleAdmin, false, ErrAdminOnAdmin},
		{"editor_removes_viewer", model.RoleEditor, model.RoleViewer, false, ErrNotManager},
		{"owner_irremovable", model.RoleAdmin, model.RoleOwner, false, ErrOwnerIrremovable},
		{"owner_irremovable_by_owner", model.RoleOwner, model.RoleOwner, false, ErrOwnerIrremovable},
		{"self_removal_blocked", model.RoleAdmin, model.RoleAdmin, true, ErrSelfChange},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CanRemove(tt.actor, tt.target, tt.self)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CanRemove(%s, %s, self=%v) = %v, want %v",
					tt.actor, tt.target, tt.self, err, tt.wantErr)
			}
		})
	}
}

func TestCanLeave(t *testing.T) {
	t.Parallel()

	for _, role := range []model.Role{model.RoleAdmin, model.RoleEditor, model.RoleViewer} {
		if err := CanLeave(role); err != nil {
			t.Errorf("%s should be able to leave, got %v", role, err)
		}
	}
	if err := CanLeave(model.RoleOwner); !errors.Is(err, ErrOwnerCannotLeave) {
		t.Errorf("owner leaving should fail, got %v", err)
	}
}

func TestWorkspaceLevelChecks(t *testing.T) {
	t.Parallel()

	if err := CanUpdateWorkspace(model.RoleAdmin); err != nil {
		t.Errorf("admin should update workspace, got %v", err)
	}
	if err := CanUpdateWorkspace(model.RoleEditor); !errors.Is(err, ErrNotManager) {
		t.Errorf("editor updating workspace should fail, got %v", err)
	}
	if err := CanDeleteWorkspace(model.RoleOwner); err != nil {
		t.Errorf("owner should delete workspace, got %v", err)
	}
	if err := CanDeleteWorkspace(model.RoleAdmin); !errors.Is(err, ErrNotOwner) {
		t.Errorf("admin deleting workspace should fail, got %v", err)
	}
	if err := CanManageInvitations(model.RoleAdmin); err != nil {
		t.Errorf("admin should manage invitations, got %v", err)
	}
	if err := CanManageInvitations(model.RoleViewer); !errors.Is(err, ErrNotManager) {
		t.Errorf("viewer managing invitations should fail, got %v", err)
	}
}
