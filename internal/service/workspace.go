// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/plumecms/cloud/internal/metrics"
	"github.com/plumecms/cloud/internal/model"
	"github.com/plumecms/cloud/internal/policy"
	"github.com/plumecms/cloud/internal/provision"
	"github.com/plumecms/cloud/internal/repository"
	"github.com/plumecms/cloud/internal/slug"
)

// Service errors.
var (
	ErrInvalidName       = errors.New("workspace name must be between 1 and 100 characters")
	ErrInvalidPlan       = errors.New("unknown plan tier")
	ErrSlugTaken         = errors.New("slug is already taken")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrNotMember         = errors.New("you are not a member of this workspace")
	ErrProvisionFailed   = errors.New("database provisioning failed")
)

// ValidationError marks user-correctable input problems so handlers
// can surface the message with a 400.
type ValidationError struct {
	err error
}

func (e *ValidationError) Error() string { return e.err.Error() }
func (e *ValidationError) Unwrap() error { return e.err }

func invalid(err error) error { return &ValidationError{err: err} }

// CustomerRegistrar creates billing customers. Satisfied by
// billing.CustomerClient.
type CustomerRegistrar interface {
	CreateCustomer(ctx context.Context, workspaceID, workspaceName, email string) (string, error)
}

// WorkspaceService handles workspace lifecycle logic.
type WorkspaceService struct {
	repo        *repository.Repository
	provisioner provision.Provisioner
	customers   CustomerRegistrar
	logger      *slog.Logger
	metrics     metrics.Recorder
}

// NewWorkspaceService creates a new WorkspaceService. customers may be
// nil when billing is not configured.
func NewWorkspaceService(repo *repository.Repository, provisioner provision.Provisioner, customers CustomerRegistrar, logger *slog.Logger, recorder metrics.Recorder) *WorkspaceService {
	if provisioner == nil {
		provisioner = provision.Disabled{}
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &WorkspaceService{
		repo:        repo,
		provisioner: provisioner,
		customers:   customers,
		logger:      logger,
		metrics:     recorder,
	}
}

// CreateWorkspaceInput defines input for creating a workspace.
type CreateWorkspaceInput struct {
	Name       string
	Slug       string
	Plan       model.PlanTier
	OwnerID    string
	OwnerEmail string
}

// CreateWorkspace validates input, provisions a dedicated database
// when configured, registers a billing customer best-effort, and
// persists the workspace with its owner membership.
//
// The provisioning call and the workspace insert are not atomic. A
// crash between them leaves an orphaned external database; there is no
// compensating cleanup job here.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, input CreateWorkspaceInput) (*model.WorkspaceWithRole, error) {
	if !model.ValidName(input.Name) {
		return nil, invalid(ErrInvalidName)
	}

	plan := input.Plan
	if plan == "" {
		plan = model.PlanFree
	}
	if !plan.IsValid() {
		return nil, invalid(ErrInvalidPlan)
	}

	wsSlug := input.Slug
	if wsSlug != "" {
		if err := slug.Validate(wsSlug); err != nil {
			return nil, invalid(err)
		}
		exists, err := s.repo.SlugExists(ctx, wsSlug)
		if err != nil {
			return nil, fmt.Errorf("check slug: %w", err)
		}
		if exists {
			return nil, ErrSlugTaken
		}
	} else {
		generated, err := slug.GenerateUnique(ctx, input.Name, s.repo.SlugExists)
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
		wsSlug = generated
	}

	now := time.Now().UTC()
	ws := &model.Workspace{
		ID:        ulid.Make().String(),
		Name:      input.Name,
		Slug:      wsSlug,
		Plan:      plan,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Provisioning failure aborts creation. Failures past this point
	// leave an orphaned external project.
	if s.provisioner.Enabled() {
		start := time.Now()
		project, err := s.provisioner.CreateProject(ctx, ws.Name)
		s.metrics.ObserveProvisionDuration(time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProvisionFailed, err)
		}
		ws.NeonProjectID = project.ProjectID
		ws.DatabaseURL = project.ConnectionURL
		ws.PoolerURL = project.PoolerURL
	}

	// Billing registration is best-effort. The workspace is created
	// without billing linkage when it fails.
	if s.customers != nil {
		customerID, err := s.customers.CreateCustomer(ctx, ws.ID, ws.Name, input.OwnerEmail)
		if err != nil {
			s.logger.Warn("billing customer creation failed",
				"workspace_id", ws.ID, "error", err)
		} else {
			ws.StripeCustomerID = customerID
		}
	}

	if err := s.repo.CreateWorkspace(ctx, ws, input.OwnerID); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	s.metrics.IncWorkspaceCreated()

	return &model.WorkspaceWithRole{Workspace: *ws, Role: model.RoleOwner}, nil
}

// ListWorkspaces returns every workspace the user belongs to, with the
// user's role attached.
func (s *WorkspaceService) ListWorkspaces(ctx context.Context, userID string) ([]*model.WorkspaceWithRole, error) {
	return s.repo.ListWorkspacesForUser(ctx, userID)
}

// GetWorkspace returns a workspace by slug with the caller's role.
// Callers must be members.
func (s *WorkspaceService) GetWorkspace(ctx context.Context, wsSlug, userID string) (*model.WorkspaceWithRole, error) {
	ws, member, err := s.resolve(ctx, wsSlug, userID)
	if err != nil {
		return nil, err
	}
	return &model.WorkspaceWithRole{Workspace: *ws, Role: member.Role}, nil
}

// UpdateWorkspaceInput defines the mutable workspace fields. The slug
// is immutable after creation.
type UpdateWorkspaceInput struct {
	Name     *string
	Settings map[string]string
}

// UpdateWorkspace applies name and settings changes. Owner or admin
// only.
func (s *WorkspaceService) UpdateWorkspace(ctx context.Context, wsSlug, userID string, input UpdateWorkspaceInput) (*model.WorkspaceWithRole, error) {
	ws, member, err := s.resolve(ctx, wsSlug, userID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanUpdateWorkspace(member.Role); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if !model.ValidName(*input.Name) {
			return nil, invalid(ErrInvalidName)
		}
		ws.Name = *input.Name
	}
	if input.Settings != nil {
		ws.Settings = input.Settings
	}
	ws.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateWorkspace(ctx, ws); err != nil {
		return nil, fmt.Errorf("update workspace: %w", err)
	}

	return &model.WorkspaceWithRole{Workspace: *ws, Role: member.Role}, nil
}

// DeleteWorkspace removes the workspace and all dependent records,
// then tears down the external database best-effort. Owner only.
func (s *WorkspaceService) DeleteWorkspace(ctx context.Context, wsSlug, userID string) error {
	ws, member, err := s.resolve(ctx, wsSlug, userID)
	if err != nil {
		return err
	}
	if err := policy.CanDeleteWorkspace(member.Role); err != nil {
		return err
	}

	if err := s.repo.DeleteWorkspace(ctx, ws.ID); err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}

	s.metrics.IncWorkspaceDeleted()

	if ws.NeonProjectID != "" && s.provisioner.Enabled() {
		if err := s.provisioner.DeleteProject(ctx, ws.NeonProjectID); err != nil {
			s.logger.Warn("database deprovisioning failed",
				"workspace_id", ws.ID, "project_id", ws.NeonProjectID, "error", err)
		}
	}

	return nil
}

// resolve loads a workspace by slug and the caller's membership.
func (s *WorkspaceService) resolve(ctx context.Context, wsSlug, userID string) (*model.Workspace, *model.Member, error) {
	ws, err := s.repo.GetWorkspaceBySlug(ctx, wsSlug)
	if err != nil {
		if errors.Is(err, repository.ErrWorkspaceNotFound) {
			return nil, nil, ErrWorkspaceNotFound
		}
		return nil, nil, err
	}

	member, err := s.repo.GetMember(ctx, ws.ID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, nil, ErrNotMember
		}
		return nil, nil, err
	}

	return ws, member, nil
}
