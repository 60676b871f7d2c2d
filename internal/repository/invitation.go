package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/plumecms/cloud/internal/model"
)

// Common errors for invitation repository operations.
var (
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationPending  = errors.New("a pending invitation already exists for this email")
)

const invitationColumns = `id, workspace_id, email, role, token_hash, inviter_id,
		expires_at, accepted_at, created_at`

// CreateInvitation inserts an invitation row. The pending-uniqueness
// rule (at most one pending invitation per workspace/email) is checked
// by the caller; the partial unique index backs it up.
func (r *Repository) CreateInvitation(ctx context.Context, inv *model.Invitation) error {
	query := `
		INSERT INTO workspace_invitations (id, workspace_id, email, role, token_hash,
			inviter_id, expires_at, accepted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		inv.ID, inv.WorkspaceID, inv.Email, inv.Role, inv.TokenHash,
		inv.InviterID, inv.ExpiresAt, inv.AcceptedAt, inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrInvitationPending
		}
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

// GetInvitationByID retrieves an invitation by ID.
func (r *Repository) GetInvitationByID(ctx context.Context, id string) (*model.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM workspace_invitations WHERE id = $1`
	return r.scanInvitation(r.pool.QueryRow(ctx, query, id))
}

// GetInvitationByTokenHash retrieves an invitation by its token hash.
func (r *Repository) GetInvitationByTokenHash(ctx context.Context, tokenHash string) (*model.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM workspace_invitations WHERE token_hash = $1`
	return r.scanInvitation(r.pool.QueryRow(ctx, query, tokenHash))
}

// GetPendingInvitation finds a non-accepted, non-expired invitation for
// the given workspace and normalized email.
func (r *Repository) GetPendingInvitation(ctx context.Context, workspaceID, email string) (*model.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM workspace_invitations
		WHERE workspace_id = $1 AND email = $2 AND accepted_at IS NULL AND expires_at > NOW()
	`
	return r.scanInvitation(r.pool.QueryRow(ctx, query, workspaceID, email))
}

// DeleteExpiredInvitations removes expired, never-accepted invitations
// for the given workspace and normalized email. The partial unique index
// cannot distinguish expired rows from pending ones, so re-inviting an
// email requires clearing its expired rows first.
func (r *Repository) DeleteExpiredInvitations(ctx context.Context, workspaceID, email string) error {
	query := `
		DELETE FROM workspace_invitations
		WHERE workspace_id = $1 AND email = $2 AND accepted_at IS NULL AND expires_at <= NOW()
	`

	if _, err := r.pool.Exec(ctx, query, workspaceID, email); err != nil {
		return fmt.Errorf("failed to delete expired invitations: %w", err)
	}
	return nil
}

// ListInvitations returns all invitations for a workspace, newest first.
func (r *Repository) ListInvitations(ctx context.Context, workspaceID string) ([]*model.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM workspace_invitations
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*model.Invitation
	for rows.Next() {
		inv, err := scanInvitationRow(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// MarkInvitationAccepted stamps an invitation as accepted.
// Only a still-pending row is updated; a second acceptance finds no row.
func (r *Repository) MarkInvitationAccepted(ctx context.Context, id string, acceptedAt time.Time) error {
	query := `
		UPDATE workspace_invitations
		SET accepted_at = $2
		WHERE id = $1 AND accepted_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, id, acceptedAt)
	if err != nil {
		return fmt.Errorf("failed to mark invitation accepted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

// DeleteInvitation permanently removes an invitation. No tombstone.
func (r *Repository) DeleteInvitation(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workspace_invitations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

func (r *Repository) scanInvitation(row pgx.Row) (*model.Invitation, error) {
	inv, err := scanInvitationRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return inv, nil
}

func scanInvitationRow(row pgx.Row) (*model.Invitation, error) {
	var inv model.Invitation
	err := row.Scan(
		&inv.ID, &inv.WorkspaceID, &inv.Email, &inv.Role, &inv.TokenHash,
		&inv.InviterID, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan invitation: %w", err)
	}
	return &inv, nil
}
