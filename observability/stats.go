// Package observability aggregates relay counters for logs and the
// debug inspector.
package observability

import (
	"sync/atomic"
	"time"
)

// RelayStats carries the live counters of the relay. All fields are
// atomics; a Snapshot is not a mutually consistent view.
type RelayStats struct {
	MessagesStored     atomic.Uint64
	LivePushes         atomic.Uint64
	SilentMisses       atomic.Uint64
	Backfills          atomic.Uint64
	ValidationFailures atomic.Uint64
	CensoredMessages   atomic.Uint64

	startedAt time.Time
	online    func() int
}

// NewRelayStats wires the registry's online count into the snapshot.
func NewRelayStats(online func() int) *RelayStats {
	return &RelayStats{startedAt: time.Now().UTC(), online: online}
}

// Snapshot renders the counters for the debug inspector dashboard.
func (s *RelayStats) Snapshot() map[string]any {
	snapshot := map[string]any{
		"Uptime":             time.Since(s.startedAt).Round(time.Second).String(),
		"MessagesStored":     s.MessagesStored.Load(),
		"LivePushes":         s.LivePushes.Load(),
		"SilentMisses":       s.SilentMisses.Load(),
		"Backfills":          s.Backfills.Load(),
		"ValidationFailures": s.ValidationFailures.Load(),
		"CensoredMessages":   s.CensoredMessages.Load(),
	}
	if s.online != nil {
		snapshot["Online"] = s.online()
	}
	return snapshot
}
