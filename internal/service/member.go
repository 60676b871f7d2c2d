package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/plumecms/cloud/internal/model"
	"github.com/plumecms/cloud/internal/policy"
	"github.com/plumecms/cloud/internal/repository"
)

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrInvalidRole    = errors.New("unknown role")
)

// MemberService handles workspace membership management.
type MemberService struct {
	repo *repository.Repository
}

// NewMemberService creates a new MemberService.
func NewMemberService(repo *repository.Repository) *MemberService {
	return &MemberService{repo: repo}
}

// ListMembers returns all members of the workspace with profile data,
// owner first. Any member may list.
func (s *MemberService) ListMembers(ctx context.Context, wsSlug, actorID string) ([]*model.MemberWithUser, error) {
	ws, _, err := s.resolve(ctx, wsSlug, actorID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, ws.ID)
}

// ChangeRole updates a member's role after authorization. The owner's
// role is immutable and self-changes are blocked.
func (s *MemberService) ChangeRole(ctx context.Context, wsSlug, actorID, targetID string, newRole model.Role) (*model.Member, error) {
	if !newRole.IsValid() || newRole == model.RoleOwner {
		return nil, invalid(ErrInvalidRole)
	}

	ws, actor, err := s.resolve(ctx, wsSlug, actorID)
	if err != nil {
		return nil, err
	}

	target, err := s.repo.GetMember(ctx, ws.ID, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	if err := policy.CanChangeRole(actor.Role, target.Role, newRole, actorID == targetID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateMemberRole(ctx, ws.ID, targetID, newRole); err != nil {
		return nil, fmt.Errorf("update member role: %w", err)
	}

	target.Role = newRole
	return target, nil
}

// RemoveMember removes a member from the workspace after
// authorization. The owner can never be removed and self-removal is
// blocked; members use Leave instead.
func (s *MemberService) RemoveMember(ctx context.Context, wsSlug, actorID, targetID string) error {
	ws, actor, err := s.resolve(ctx, wsSlug, actorID)
	if err != nil {
		return err
	}

	target, err := s.repo.GetMember(ctx, ws.ID, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	if err := policy.CanRemove(actor.Role, target.Role, actorID == targetID); err != nil {
		return err
	}

	return s.repo.DeleteMember(ctx, ws.ID, targetID)
}

// Leave removes the caller's own membership. The owner may not leave.
func (s *MemberService) Leave(ctx context.Context, wsSlug, actorID string) error {
	ws, actor, err := s.resolve(ctx, wsSlug, actorID)
	if err != nil {
		return err
	}

	if err := policy.CanLeave(actor.Role); err != nil {
		return err
	}

	return s.repo.DeleteMember(ctx, ws.ID, actorID)
}

func (s *MemberService) resolve(ctx context.Context, wsSlug, actorID string) (*model.Workspace, *model.Member, error) {
	ws, err := s.repo.GetWorkspaceBySlug(ctx, wsSlug)
	if err != nil {
		if errors.Is(err, repository.ErrWorkspaceNotFound) {
			return nil, nil, ErrWorkspaceNotFound
		}
		return nil, nil, err
	}

	actor, err := s.repo.GetMember(ctx, ws.ID, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, nil, ErrNotMember
		}
		return nil, nil, err
	}

	return ws, actor, nil
}
