package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserSignedUp is a no-op.
func (n *NoopRecorder) IncUserSignedUp() {}

// IncWorkspaceCreated is a no-op.
func (n *NoopRecorder) IncWorkspaceCreated() {}

// IncWorkspaceDeleted is a no-op.
func (n *NoopRecorder) IncWorkspaceDeleted() {}

// ObserveProvisionDuration is a no-op.
func (n *NoopRecorder) ObserveProvisionDuration(duration time.Duration) {}

// IncInvitationCreated is a no-op.
func (n *NoopRecorder) IncInvitationCreated() {}

// IncInvitationAccepted is a no-op.
func (n *NoopRecorder) IncInvitationAccepted() {}

// IncWebhookReceived is a no-op.
func (n *NoopRecorder) IncWebhookReceived(status string) {}
