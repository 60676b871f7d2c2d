package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersSignedUp            uint64
	WorkspacesCreated        uint64
	WorkspacesDeleted        uint64
	ProvisionDurationCount   uint64
	ProvisionDurationTotalNs int64
	InvitationsCreated       uint64
	InvitationsAccepted      uint64
	WebhooksAccepted         uint64
	WebhooksRejected         uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersSignedUp            uint64
	workspacesCreated        uint64
	workspacesDeleted        uint64
	provisionDurationCount   uint64
	provisionDurationTotalNs int64
	invitationsCreated       uint64
	invitationsAccepted      uint64
	webhooksAccepted         uint64
	webhooksRejected         uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersSignedUp:            atomic.LoadUint64(&m.usersSignedUp),
		WorkspacesCreated:        atomic.LoadUint64(&m.workspacesCreated),
		WorkspacesDeleted:        atomic.LoadUint64(&m.workspacesDeleted),
		ProvisionDurationCount:   atomic.LoadUint64(&m.provisionDurationCount),
		ProvisionDurationTotalNs: atomic.LoadInt64(&m.provisionDurationTotalNs),
		InvitationsCreated:       atomic.LoadUint64(&m.invitationsCreated),
		InvitationsAccepted:      atomic.LoadUint64(&m.invitationsAccepted),
		WebhooksAccepted:         atomic.LoadUint64(&m.webhooksAccepted),
		WebhooksRejected:         atomic.LoadUint64(&m.webhooksRejected),
	}
}

// IncUserSignedUp increments the signup counter.
func (m *InMemoryRecorder) IncUserSignedUp() {
	atomic.AddUint64(&m.usersSignedUp, 1)
}

// IncWorkspaceCreated increments the workspace created counter.
func (m *InMemoryRecorder) IncWorkspaceCreated() {
	atomic.AddUint64(&m.workspacesCreated, 1)
}

// IncWorkspaceDeleted increments the workspace deleted counter.
func (m *InMemoryRecorder) IncWorkspaceDeleted() {
	atomic.AddUint64(&m.workspacesDeleted, 1)
}

// ObserveProvisionDuration records a provisioning call duration.
func (m *InMemoryRecorder) ObserveProvisionDuration(duration time.Duration) {
	atomic.AddUint64(&m.provisionDurationCount, 1)
	atomic.AddInt64(&m.provisionDurationTotalNs, duration.Nanoseconds())
}

// IncInvitationCreated increments the invitation created counter.
func (m *InMemoryRecorder) IncInvitationCreated() {
	atomic.AddUint64(&m.invitationsCreated, 1)
}

// IncInvitationAccepted increments the invitation accepted counter.
func (m *InMemoryRecorder) IncInvitationAccepted() {
	atomic.AddUint64(&m.invitationsAccepted, 1)
}

// IncWebhookReceived increments the webhook counter for the status.
func (m *InMemoryRecorder) IncWebhookReceived(status string) {
	if status == "accepted" {
		atomic.AddUint64(&m.webhooksAccepted, 1)
	} else {
		atomic.AddUint64(&m.webhooksRejected, 1)
	}
}
