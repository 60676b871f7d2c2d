package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/plumecms/cloud/internal/auth"
	"github.com/plumecms/cloud/internal/metrics"
	"github.com/plumecms/cloud/internal/model"
	"github.com/plumecms/cloud/internal/policy"
	"github.com/plumecms/cloud/internal/repository"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrAlreadyMember      = errors.New("this email already belongs to a workspace member")
	ErrInvitePending      = errors.New("a pending invitation already exists for this email")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationExpired  = errors.New("invitation has expired")
	ErrInvitationUsed     = errors.New("invitation has already been accepted")
	ErrEmailMismatch      = errors.New("invitation was issued for a different email address")
)

// InvitationService handles the invitation lifecycle.
type InvitationService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(repo *repository.Repository, recorder metrics.Recorder) *InvitationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &InvitationService{repo: repo, metrics: recorder}
}

// CreatedInvitation pairs a stored invitation with its one-time
// plaintext token. The token is only available at creation; storage
// keeps a hash.
type CreatedInvitation struct {
	Invitation *model.Invitation
	Token      string
}

// CreateInvitation invites an email to join the workspace with a
// predetermined role. At most one pending invitation may exist per
// (workspace, email).
func (s *InvitationService) CreateInvitation(ctx context.Context, wsSlug, actorID, email string, role model.Role) (*CreatedInvitation, error) {
	email = model.NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, invalid(ErrInvalidEmail)
	}
	if !role.IsValid() {
		return nil, invalid(ErrInvalidRole)
	}

	ws, actor, err := s.resolve(ctx, wsSlug, actorID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanInvite(actor.Role, role); err != nil {
		return nil, err
	}

	isMember, err := s.repo.IsMemberEmail(ctx, ws.ID, email)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	if _, err := s.repo.GetPendingInvitation(ctx, ws.ID, email); err == nil {
		return nil, ErrInvitePending
	} else if !errors.Is(err, repository.ErrInvitationNotFound) {
		return nil, fmt.Errorf("check pending invitation: %w", err)
	}

	// An expired invitation must not block a fresh one, but its row
	// still occupies the partial unique index. Clear it before insert.
	if err := s.repo.DeleteExpiredInvitations(ctx, ws.ID, email); err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("generate invitation token: %w", err)
	}

	now := time.Now().UTC()
	inv := &model.Invitation{
		ID:          ulid.Make().String(),
		WorkspaceID: ws.ID,
		Email:       email,
		Role:        role,
		TokenHash:   auth.HashToken(token),
		InviterID:   actorID,
		ExpiresAt:   now.Add(model.InvitationTTL),
		CreatedAt:   now,
	}

	if err := s.repo.CreateInvitation(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	s.metrics.IncInvitationCreated()

	return &CreatedInvitation{Invitation: inv, Token: token}, nil
}

// ListInvitations returns all invitations for the workspace. Owner or
// admin only.
func (s *InvitationService) ListInvitations(ctx context.Context, wsSlug, actorID string) ([]*model.Invitation, error) {
	ws, actor, err := s.resolve(ctx, wsSlug, actorID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanManageInvitations(actor.Role); err != nil {
		return nil, err
	}
	return s.repo.ListInvitations(ctx, ws.ID)
}

// InvitationPreview is the unauthenticated view of an invitation,
// shown before requiring login.
type InvitationPreview struct {
	WorkspaceName string     `json:"workspace_name"`
	WorkspaceSlug string     `json:"workspace_slug"`
	Email         string     `json:"email"`
	Role          model.Role `json:"role"`
	ExpiresAt     time.Time  `json:"expires_at"`
	Expired       bool       `json:"expired"`
}

// PreviewInvitation looks up an invitation by its plaintext token.
// Read-only and unauthenticated.
func (s *InvitationService) PreviewInvitation(ctx context.Context, token string) (*InvitationPreview, error) {
	inv, err := s.lookupByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.IsAccepted() {
		return nil, ErrInvitationUsed
	}

	ws, err := s.repo.GetWorkspaceByID(ctx, inv.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}

	return &InvitationPreview{
		WorkspaceName: ws.Name,
		WorkspaceSlug: ws.Slug,
		Email:         inv.Email,
		Role:          inv.Role,
		ExpiresAt:     inv.ExpiresAt,
		Expired:       inv.IsExpired(),
	}, nil
}

// AcceptInvitation redeems an invitation for the authenticated user.
// The user's email must match the invitee email (case-insensitive).
// Accepting an already-accepted or expired invitation always fails and
// never mutates state.
func (s *InvitationService) AcceptInvitation(ctx context.Context, token, userID string) (*model.WorkspaceWithRole, error) {
	inv, err := s.lookupByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.IsAccepted() {
		return nil, ErrInvitationUsed
	}
	if inv.IsExpired() {
		return nil, ErrInvitationExpired
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if model.NormalizeEmail(user.Email) != inv.Email {
		return nil, ErrEmailMismatch
	}

	if _, err := s.repo.GetMember(ctx, inv.WorkspaceID, userID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, repository.ErrMemberNotFound) {
		return nil, err
	}

	// The membership and the acceptance mark share one timestamp.
	now := time.Now().UTC()
	member := &model.Member{
		WorkspaceID: inv.WorkspaceID,
		UserID:      userID,
		Role:        inv.Role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrAlreadyMember) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("create membership: %w", err)
	}
	if err := s.repo.MarkInvitationAccepted(ctx, inv.ID, now); err != nil {
		return nil, fmt.Errorf("mark invitation accepted: %w", err)
	}

	s.metrics.IncInvitationAccepted()

	ws, err := s.repo.GetWorkspaceByID(ctx, inv.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}
	return &model.WorkspaceWithRole{Workspace: *ws, Role: inv.Role}, nil
}

// RevokeInvitation deletes a pending invitation. Owner or admin only.
func (s *InvitationService) RevokeInvitation(ctx context.Context, wsSlug, actorID, invitationID string) error {
	ws, actor, err := s.resolve(ctx, wsSlug, actorID)
	if err != nil {
		return err
	}
	if err := policy.CanManageInvitations(actor.Role); err != nil {
		return err
	}

	inv, err := s.repo.GetInvitationByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, repository.ErrInvitationNotFound) {
			return ErrInvitationNotFound
		}
		return err
	}
	if inv.WorkspaceID != ws.ID {
		return ErrInvitationNotFound
	}

	return s.repo.DeleteInvitation(ctx, invitationID)
}

func (s *InvitationService) lookupByToken(ctx context.Context, token string) (*model.Invitation, error) {
	if token == "" {
		return nil, ErrInvitationNotFound
	}
	inv, err := s.repo.GetInvitationByTokenHash(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrInvitationNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (s *InvitationService) resolve(ctx context.Context, wsSlug, actorID string) (*model.Workspace, *model.Member, error) {
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
