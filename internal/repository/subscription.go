package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/plumecms/cloud/internal/model"
)

// ErrSubscriptionNotFound is returned when a workspace has no
// subscription row.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// UpsertSubscription inserts or replaces the billing state of a
// workspace. Called exclusively by the billing webhook handler.
func (r *Repository) UpsertSubscription(ctx context.Context, sub *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, workspace_id, status, current_period_start,
			current_period_end, cancel_at_period_end, entitlements, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (workspace_id) DO UPDATE SET
			id = EXCLUDED.id,
			status = EXCLUDED.status,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			entitlements = EXCLUDED.entitlements,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		sub.ID,
		sub.WorkspaceID,
		sub.Status,
		sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd,
		sub.CancelAtPeriodEnd,
		pq.Array(sub.Entitlements),
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// GetSubscriptionByWorkspace retrieves the subscription of a workspace.
func (r *Repository) GetSubscriptionByWorkspace(ctx context.Context, workspaceID string) (*model.Subscription, error) {
	query := `
		SELECT id, workspace_id, status, current_period_start, current_period_end,
			cancel_at_period_end, entitlements, created_at, updated_at
		FROM subscriptions
		WHERE workspace_id = $1
	`

	var sub model.Subscription
	err := r.pool.QueryRow(ctx, query, workspaceID).Scan(
		&sub.ID,
		&sub.WorkspaceID,
		&sub.Status,
		&sub.CurrentPeriodStart,
		&sub.CurrentPeriodEnd,
		&sub.CancelAtPeriodEnd,
		pq.Array(&sub.Entitlements),
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}
