// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncUserSignedUp()

	// Workspace lifecycle metrics
	IncWorkspaceCreated()
	IncWorkspaceDeleted()
	ObserveProvisionDuration(duration time.Duration)

	// Invitation metrics
	IncInvitationCreated()
	IncInvitationAccepted()

	// Billing webhook metrics
	IncWebhookReceived(status string) // status: "accepted" or "rejected"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
