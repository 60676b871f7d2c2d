package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/plumecms/cloud/internal/model"
)

// Common errors for membership repository operations.
var (
	ErrMemberNotFound = errors.New("member not found")
	ErrAlreadyMember  = errors.New("user is already a member of this workspace")
)

// CreateMember inserts a membership row.
func (r *Repository) CreateMember(ctx context.Context, m *model.Member) error {
	query := `
		INSERT INTO workspace_members (workspace_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, m.WorkspaceID, m.UserID, m.Role, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyMember
		}
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

// GetMember retrieves a membership by its composite key.
func (r *Repository) GetMember(ctx context.Context, workspaceID, userID string) (*model.Member, error) {
	query := `
		SELECT workspace_id, user_id, role, created_at, updated_at
		FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2
	`

	var m model.Member
	err := r.pool.QueryRow(ctx, query, workspaceID, userID).Scan(
		&m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &m, nil
}

// IsMemberEmail checks whether an email already belongs to a member of
// the workspace. The email must be normalized.
func (r *Repository) IsMemberEmail(ctx context.Context, workspaceID, email string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM workspace_members m
			JOIN users u ON u.id = m.user_id
			WHERE m.workspace_id = $1 AND u.email = $2
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, workspaceID, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check member email: %w", err)
	}
	return exists, nil
}

// ListMembers returns all members of a workspace with their profiles,
// owner first, then by join date.
func (r *Repository) ListMembers(ctx context.Context, workspaceID string) ([]*model.MemberWithUser, error) {
	query := `
		SELECT m.workspace_id, m.user_id, m.role, m.created_at, m.updated_at,
			u.name, u.email, u.image
		FROM workspace_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = $1
		ORDER BY (m.role = 'owner') DESC, m.created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*model.MemberWithUser
	for rows.Next() {
		var m model.MemberWithUser
		var image *string
		err := rows.Scan(
			&m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt,
			&m.Name, &m.Email, &image,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		if image != nil {
			m.Image = *image
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

// UpdateMemberRole changes a member's role.
func (r *Repository) UpdateMemberRole(ctx context.Context, workspaceID, userID string, role model.Role) error {
	query := `
		UPDATE workspace_members
		SET role = $3, updated_at = NOW()
		WHERE workspace_id = $1 AND user_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, workspaceID, userID, role)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// DeleteMember removes a membership row.
func (r *Repository) DeleteMember(ctx context.Context, workspaceID, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}
