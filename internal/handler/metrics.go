package handler

import (
	"fmt"
	"net/http"

	"github.com/plumecms/cloud/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "plume_users_signed_up_total %d\n", snap.UsersSignedUp)

	writeMetric(w, "plume_workspaces_created_total %d\n", snap.WorkspacesCreated)
	writeMetric(w, "plume_workspaces_deleted_total %d\n", snap.WorkspacesDeleted)
	writeMetric(w, "plume_provision_duration_seconds_count %d\n", snap.ProvisionDurationCount)
	writeMetric(w, "plume_provision_duration_seconds_sum %.6f\n", float64(snap.ProvisionDurationTotalNs)/1e9)

	writeMetric(w, "plume_invitations_created_total %d\n", snap.InvitationsCreated)
	writeMetric(w, "plume_invitations_accepted_total %d\n", snap.InvitationsAccepted)

	writeMetric(w, "plume_webhooks_received_total{status=\"accepted\"} %d\n", snap.WebhooksAccepted)
	writeMetric(w, "plume_webhooks_received_total{status=\"rejected\"} %d\n", snap.WebhooksRejected)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
