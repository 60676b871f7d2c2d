package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/plumecms/cloud/internal/model"
)

// Common errors for workspace repository operations.
var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrSlugExists        = errors.New("slug already exists")
)

const workspaceColumns = `id, name, slug, plan, neon_project_id, database_url, pooler_url,
		stripe_customer_id, settings, suspended, created_at, updated_at`

// CreateWorkspace inserts a workspace and its owner membership in a
// single transaction. Both rows share the workspace creation timestamp.
func (r *Repository) CreateWorkspace(ctx context.Context, ws *model.Workspace, ownerID string) error {
	settings, err := marshalSettings(ws.Settings)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO workspaces (id, name, slug, plan, neon_project_id, database_url, pooler_url,
			stripe_customer_id, settings, suspended, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		ws.ID,
		ws.Name,
		ws.Slug,
		ws.Plan,
		nullable(ws.NeonProjectID),
		nullable(ws.DatabaseURL),
		nullable(ws.PoolerURL),
		nullable(ws.StripeCustomerID),
		settings,
		ws.Suspended,
		ws.CreatedAt,
		ws.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, ws.ID, ownerID, model.RoleOwner, ws.CreatedAt, ws.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create owner membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit workspace creation: %w", err)
	}
	return nil
}

// SlugExists checks whether a workspace slug is already claimed.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM workspaces WHERE slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// GetWorkspaceBySlug retrieves a workspace by its slug.
func (r *Repository) GetWorkspaceBySlug(ctx context.Context, slug string) (*model.Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces WHERE slug = $1`
	return r.scanWorkspace(r.pool.QueryRow(ctx, query, slug))
}

// GetWorkspaceByID retrieves a workspace by its ID.
func (r *Repository) GetWorkspaceByID(ctx context.Context, id string) (*model.Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces WHERE id = $1`
	return r.scanWorkspace(r.pool.QueryRow(ctx, query, id))
}

// GetWorkspaceByStripeCustomer retrieves the workspace linked to a
// billing customer id.
func (r *Repository) GetWorkspaceByStripeCustomer(ctx context.Context, customerID string) (*model.Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces WHERE stripe_customer_id = $1`
	return r.scanWorkspace(r.pool.QueryRow(ctx, query, customerID))
}

// ListWorkspacesForUser returns every workspace the user is a member of,
// with the user's role attached, newest first.
func (r *Repository) ListWorkspacesForUser(ctx context.Context, userID string) ([]*model.WorkspaceWithRole, error) {
	query := `
		SELECT w.id, w.name, w.slug, w.plan, w.neon_project_id, w.database_url, w.pooler_url,
			w.stripe_customer_id, w.settings, w.suspended, w.created_at, w.updated_at, m.role
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.id
		WHERE m.user_id = $1
		ORDER BY w.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var result []*model.WorkspaceWithRole
	for rows.Next() {
		var (
			ws                                   model.Workspace
			neonID, dbURL, poolerURL, customerID *string
			settings                             []byte
			role                                 model.Role
		)
		err := rows.Scan(
			&ws.ID, &ws.Name, &ws.Slug, &ws.Plan, &neonID, &dbURL, &poolerURL,
			&customerID, &settings, &ws.Suspended, &ws.CreatedAt, &ws.UpdatedAt, &role,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		applyWorkspaceNullables(&ws, neonID, dbURL, poolerURL, customerID)
		if err := unmarshalSettings(settings, &ws); err != nil {
			return nil, err
		}
		result = append(result, &model.WorkspaceWithRole{Workspace: ws, Role: role})
	}
	return result, rows.Err()
}

// UpdateWorkspace updates the mutable fields of a workspace.
// The slug is immutable and never written here.
func (r *Repository) UpdateWorkspace(ctx context.Context, ws *model.Workspace) error {
	settings, err := marshalSettings(ws.Settings)
	if err != nil {
		return err
	}

	query := `
		UPDATE workspaces
		SET name = $2, settings = $3, suspended = $4, stripe_customer_id = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		ws.ID, ws.Name, settings, ws.Suspended, nullable(ws.StripeCustomerID), ws.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update workspace: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkspaceNotFound
	}
	return nil
}

// DeleteWorkspace removes a workspace and all dependent rows
// (memberships, invitations, subscriptions) in one transaction.
func (r *Repository) DeleteWorkspace(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, q := range []string{
		`DELETE FROM workspace_invitations WHERE workspace_id = $1`,
		`DELETE FROM workspace_members WHERE workspace_id = $1`,
		`DELETE FROM subscriptions WHERE workspace_id = $1`,
	} {
		if _, err := tx.Exec(ctx, q, id); err != nil {
			return fmt.Errorf("failed to delete workspace dependents: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkspaceNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit workspace deletion: %w", err)
	}
	return nil
}

// scanWorkspace scans a single workspace row.
func (r *Repository) scanWorkspace(row pgx.Row) (*model.Workspace, error) {
	var (
		ws                                   model.Workspace
		neonID, dbURL, poolerURL, customerID *string
		settings                             []byte
	)

	err := row.Scan(
		&ws.ID, &ws.Name, &ws.Slug, &ws.Plan, &neonID, &dbURL, &poolerURL,
		&customerID, &settings, &ws.Suspended, &ws.CreatedAt, &ws.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to scan workspace: %w", err)
	}

	applyWorkspaceNullables(&ws, neonID, dbURL, poolerURL, customerID)
	if err := unmarshalSettings(settings, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

func applyWorkspaceNullables(ws *model.Workspace, neonID, dbURL, poolerURL, customerID *string) {
	if neonID != nil {
		ws.NeonProjectID = *neonID
	}
	if dbURL != nil {
		ws.DatabaseURL = *dbURL
	}
	if poolerURL != nil {
		ws.PoolerURL = *poolerURL
	}
	if customerID != nil {
		ws.StripeCustomerID = *customerID
	}
}

func marshalSettings(settings map[string]string) ([]byte, error) {
	if settings == nil {
		settings = map[string]string{}
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	return data, nil
}

func unmarshalSettings(data []byte, ws *model.Workspace) error {
	if len(data) == 0 {
		ws.Settings = map[string]string{}
		return nil
	}
	if err := json.Unmarshal(data, &ws.Settings); err != nil {
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return nil
}
