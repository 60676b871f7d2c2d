package billing

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/plumecms/cloud/internal/model"
	"github.com/plumecms/cloud/internal/repository"
)

type fakeStore struct {
	workspace *model.Workspace
	upserted  *model.Subscription
}

func (f *fakeStore) GetWorkspaceByStripeCustomer(_ context.Context, customerID string) (*model.Workspace, error) {
	if f.workspace == nil || f.workspace.StripeCustomerID != customerID {
		return nil, repository.ErrWorkspaceNotFound
	}
	return f.workspace, nil
}

func (f *fakeStore) UpsertSubscription(_ context.Context, sub *model.Subscription) error {
	f.upserted = sub
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubscriptionHandlerRecordsState(t *testing.T) {
	t.Parallel()

	store := &fakeStore{workspace: &model.Workspace{
		ID:               "ws_1",
		StripeCustomerID: "cus_123",
	}}
	h := NewSubscriptionHandler(store, discardLogger())

	payload := []byte(`{
		"type": "customer.subscription.updated",
		"data": {"object": {
			"id": "sub_1",
			"customer": "cus_123",
			"status": "active",
			"current_period_start": 1700000000,
			"current_period_end": 1702592000,
			"cancel_at_period_end": false,
			"metadata": {"plan": "pro"}
		}}
	}`)

	if err := h.HandleEvent(context.Background(), nil, payload); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if store.upserted == nil {
		t.Fatal("expected subscription upsert")
	}
	if store.upserted.WorkspaceID != "ws_1" {
		t.Errorf("WorkspaceID = %q, want ws_1", store.upserted.WorkspaceID)
	}
	if store.upserted.Status != model.SubscriptionActive {
		t.Errorf("Status = %q, want active", store.upserted.Status)
	}
	if len(store.upserted.Entitlements) == 0 {
		t.Error("expected entitlements for pro plan")
	}
}

func TestSubscriptionHandlerDeletedMarksCanceled(t *testing.T) {
	t.Parallel()

	store := &fakeStore{workspace: &model.Workspace{
		ID:               "ws_1",
		StripeCustomerID: "cus_123",
	}}
	h := NewSubscriptionHandler(store, discardLogger())

	payload := []byte(`{
		"type": "customer.subscription.deleted",
		"data": {"object": {
			"id": "sub_1",
			"customer": "cus_123",
			"status": "active"
		}}
	}`)

	if err := h.HandleEvent(context.Background(), nil, payload); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if store.upserted == nil {
		t.Fatal("expected subscription upsert")
	}
	if store.upserted.Status != model.SubscriptionCanceled {
		t.Errorf("Status = %q, want canceled", store.upserted.Status)
	}
}

func TestSubscriptionHandlerIgnoresOtherEvents(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	h := NewSubscriptionHandler(store, discardLogger())

	payload := []byte(`{"type": "invoice.paid", "data": {"object": {}}}`)
	if err := h.HandleEvent(context.Background(), nil, payload); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if store.upserted != nil {
		t.Error("unexpected upsert for ignored event type")
	}
}

func TestSubscriptionHandlerUnknownCustomer(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	h := NewSubscriptionHandler(store, discardLogger())

	payload := []byte(`{
		"type": "customer.subscription.created",
		"data": {"object": {"id": "sub_1", "customer": "cus_missing", "status": "active"}}
	}`)

	if err := h.HandleEvent(context.Background(), nil, payload); err != nil {
		t.Fatalf("HandleEvent() error = %v, want nil for unknown customer", err)
	}
	if store.upserted != nil {
		t.Error("unexpected upsert for unknown customer")
	}
}

func TestSubscriptionHandlerMalformedPayload(t *testing.T) {
	t.Parallel()

	h := NewSubscriptionHandler(&fakeStore{}, discardLogger())
	if err := h.HandleEvent(context.Background(), nil, []byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
