package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/plumecms/cloud/internal/billing"
	"github.com/plumecms/cloud/internal/metrics"
)

type fakeEventHandler struct {
	err     error
	header  *billing.SignatureHeader
	payload []byte
	called  bool
}

func (f *fakeEventHandler) HandleEvent(_ context.Context, header *billing.SignatureHeader, payload []byte) error {
	f.called = true
	f.header = header
	f.payload = payload
	return f.err
}

func newWebhookRequest(signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{"type":"test"}`))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	return req
}

func freshSignature() string {
	return fmt.Sprintf("t=%d,v1=abc123", time.Now().Unix())
}

func TestWebhookStripeRequiresSignatureHeader(t *testing.T) {
	events := &fakeEventHandler{}
	h := NewWebhookHandler(events, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	rec := httptest.NewRecorder()
	h.Stripe(rec, newWebhookRequest(""))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if events.called {
		t.Error("event handler should not be called without a signature")
	}
}

func TestWebhookStripeRejectsMalformedSignature(t *testing.T) {
	events := &fakeEventHandler{}
	h := NewWebhookHandler(events, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	for _, sig := range []string{"v1=abc123", "t=abc,v1=def", "t=123"} {
		rec := httptest.NewRecorder()
		h.Stripe(rec, newWebhookRequest(sig))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("signature %q: status = %d, want 400", sig, rec.Code)
		}
	}
	if events.called {
		t.Error("event handler should not be called for malformed signatures")
	}
}

func TestWebhookStripeRejectsStaleTimestamp(t *testing.T) {
	events := &fakeEventHandler{}
	h := NewWebhookHandler(events, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	stale := fmt.Sprintf("t=%d,v1=abc123", time.Now().Add(-time.Hour).Unix())
	rec := httptest.NewRecorder()
	h.Stripe(rec, newWebhookRequest(stale))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if events.called {
		t.Error("event handler should not be called for stale timestamps")
	}
}

func TestWebhookStripeDeliversEvent(t *testing.T) {
	events := &fakeEventHandler{}
	recorder := metrics.NewInMemory()
	h := NewWebhookHandler(events, slog.New(slog.NewTextHandler(io.Discard, nil)), recorder)

	rec := httptest.NewRecorder()
	h.Stripe(rec, newWebhookRequest(freshSignature()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !events.called {
		t.Fatal("event handler was not called")
	}
	if events.header == nil || len(events.header.Signatures) != 1 {
		t.Errorf("header = %+v, want one signature", events.header)
	}
	if string(events.payload) != `{"type":"test"}` {
		t.Errorf("payload = %q", events.payload)
	}
	if got := recorder.Snapshot().WebhooksAccepted; got != 1 {
		t.Errorf("accepted counter = %d, want 1", got)
	}
}

func TestWebhookStripeProcessingFailure(t *testing.T) {
	events := &fakeEventHandler{err: errors.New("db down")}
	recorder := metrics.NewInMemory()
	h := NewWebhookHandler(events, slog.New(slog.NewTextHandler(io.Discard, nil)), recorder)

	rec := httptest.NewRecorder()
	h.Stripe(rec, newWebhookRequest(freshSignature()))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if got := recorder.Snapshot().WebhooksRejected; got != 1 {
		t.Errorf("rejected counter = %d, want 1", got)
	}
}
