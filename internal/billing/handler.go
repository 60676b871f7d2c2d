package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/plumecms/cloud/internal/model"
	"github.com/plumecms/cloud/internal/repository"
)

// Handler consumes a verified webhook envelope plus the raw event
// payload. Cryptographic verification of the payload is delegated to
// the payment processor's tooling; this layer only acts on the parsed
// event.
type Handler interface {
	HandleEvent(ctx context.Context, header *SignatureHeader, payload []byte) error
}

// SubscriptionStore is the persistence surface the webhook handler
// needs.
type SubscriptionStore interface {
	GetWorkspaceByStripeCustomer(ctx context.Context, customerID string) (*model.Workspace, error)
	UpsertSubscription(ctx context.Context, sub *model.Subscription) error
}

// SubscriptionHandler records subscription state transitions reported
// by the payment processor.
type SubscriptionHandler struct {
	store  SubscriptionStore
	logger *slog.Logger
}

// NewSubscriptionHandler creates the default webhook event handler.
func NewSubscriptionHandler(store SubscriptionStore, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{store: store, logger: logger}
}

// stripeEvent is the subset of the event payload we act on.
type stripeEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID                 string            `json:"id"`
			Customer           string            `json:"customer"`
			Status             string            `json:"status"`
			CurrentPeriodStart int64             `json:"current_period_start"`
			CurrentPeriodEnd   int64             `json:"current_period_end"`
			CancelAtPeriodEnd  bool              `json:"cancel_at_period_end"`
			Metadata           map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// HandleEvent applies subscription lifecycle events to storage. Events
// of other types are acknowledged without action.
func (h *SubscriptionHandler) HandleEvent(ctx context.Context, header *SignatureHeader, payload []byte) error {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode billing event: %w", err)
	}

	switch event.Type {
	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted":
	default:
		h.logger.Debug("ignoring billing event", "type", event.Type)
		return nil
	}

	obj := event.Data.Object
	if obj.Customer == "" {
		return errors.New("billing event missing customer id")
	}

	ws, err := h.store.GetWorkspaceByStripeCustomer(ctx, obj.Customer)
	if err != nil {
		if errors.Is(err, repository.ErrWorkspaceNotFound) {
			h.logger.Warn("billing event for unknown customer", "customer_id", obj.Customer)
			return nil
		}
		return fmt.Errorf("resolve billing customer: %w", err)
	}

	status := obj.Status
	if event.Type == "customer.subscription.deleted" {
		status = model.SubscriptionCanceled
	}

	sub := &model.Subscription{
		ID:                 obj.ID,
		WorkspaceID:        ws.ID,
		Status:             status,
		CurrentPeriodStart: time.Unix(obj.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:   time.Unix(obj.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd:  obj.CancelAtPeriodEnd,
		Entitlements:       entitlementsFor(obj.Metadata, status),
	}

	if err := h.store.UpsertSubscription(ctx, sub); err != nil {
		return fmt.Errorf("record subscription state: %w", err)
	}

	h.logger.Info("subscription state recorded",
		"workspace_id", ws.ID,
		"subscription_id", obj.ID,
		"status", status)
	return nil
}

// entitlementsFor resolves the feature set granted by the event. The
// plan is carried in subscription metadata; canceled subscriptions
// fall back to the free tier.
func entitlementsFor(metadata map[string]string, status string) []string {
	if status == model.SubscriptionCanceled {
		return model.PlanFree.Entitlements()
	}
	plan := model.PlanTier(metadata["plan"])
	if !plan.IsValid() {
		plan = model.PlanFree
	}
	return plan.Entitlements()
}
