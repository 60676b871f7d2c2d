// Package provision manages external database provisioning per workspace.
package provision

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no provisioning integration is
// configured but a caller requires one.
var ErrNotConfigured = errors.New("database provisioning is not configured")

// DatabaseProject is the result of provisioning a dedicated database.
type DatabaseProject struct {
	ProjectID     string
	ConnectionURL string
	PoolerURL     string
}

// Provisioner creates and destroys per-workspace databases.
type Provisioner interface {
	// CreateProject provisions a dedicated database for the workspace.
	// Failure must abort workspace creation.
	CreateProject(ctx context.Context, workspaceName string) (*DatabaseProject, error)

	// DeleteProject tears down the workspace database.
	DeleteProject(ctx context.Context, projectID string) error

	// Enabled reports whether the integration is configured.
	Enabled() bool
}

// Disabled is the Provisioner used when no integration is configured.
// Workspaces are created without a dedicated database.
type Disabled struct{}

func (Disabled) CreateProject(ctx context.Context, workspaceName string) (*DatabaseProject, error) {
	return nil, ErrNotConfigured
}

func (Disabled) DeleteProject(ctx context.Context, projectID string) error {
	return ErrNotConfigured
}

func (Disabled) Enabled() bool { return false }
