package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/plumecms/cloud/internal/billing"
	"github.com/plumecms/cloud/internal/metrics"
)

const maxWebhookBodySize = 1 << 20 // 1MB

// WebhookHandler ingests payment-processor events.
type WebhookHandler struct {
	events  billing.Handler
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(events billing.Handler, logger *slog.Logger, recorder metrics.Recorder) *WebhookHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &WebhookHandler{
		events:  events,
		logger:  logger,
		metrics: recorder,
	}
}

// Stripe handles POST /api/webhooks/stripe. The body is read raw; the
// Stripe-Signature header is required and its timestamp must be within
// the replay tolerance. Cryptographic verification of the payload is
// delegated downstream.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		h.reject(w, "MISSING_SIGNATURE", "Stripe-Signature header is required")
		return
	}

	header := billing.ParseSignatureHeader(signature)
	if header == nil {
		h.reject(w, "INVALID_SIGNATURE", "Malformed Stripe-Signature header")
		return
	}

	if !billing.IsTimestampValid(header.Timestamp, billing.DefaultTolerance) {
		h.reject(w, "STALE_TIMESTAMP", "Event timestamp outside tolerance window")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		h.reject(w, "UNREADABLE_BODY", "Could not read request body")
		return
	}

	if err := h.events.HandleEvent(r.Context(), header, payload); err != nil {
		h.metrics.IncWebhookReceived("rejected")
		h.logger.Error("webhook_processing_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "WEBHOOK_FAILED", "Event processing failed")
		return
	}

	h.metrics.IncWebhookReceived("accepted")

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *WebhookHandler) reject(w http.ResponseWriter, code, message string) {
	h.metrics.IncWebhookReceived("rejected")
	h.logger.Warn("webhook_rejected", "code", code)
	writeError(w, http.StatusBadRequest, code, message)
}
