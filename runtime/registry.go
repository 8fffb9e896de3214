// Package runtime wires the relay together: connection registry,
// supervised workers, and the event fan-out pipeline. It contains no
// business rules about messages themselves.
package runtime

import (
	"sync"

	"github.com/google/uuid"

	"mentorchat/contract"
)

type session struct {
	handleID uuid.UUID
	sink     contract.EventSink
}

// Registry is the only shared mutable structure of the relay. A single
// RWMutex guards both maps; every operation is O(1) and total.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]session   // identity -> current connection
	handles  map[uuid.UUID]string // handle -> identity, for reverse lookup on disconnect
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]session),
		handles:  make(map[uuid.UUID]string),
	}
}

// Register records or replaces the live connection for an identity.
// Last announcement wins: the previous handle (same identity, earlier
// device or a reconnect) becomes stale and is forgotten here. The
// transport owning the stale handle notices on its own read loop.
func (r *Registry) Register(identity string, handleID uuid.UUID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.sessions[identity]; ok {
		delete(r.handles, prev.handleID)
	}
	r.sessions[identity] = session{handleID: handleID, sink: sink}
	r.handles[handleID] = identity
}

// Unregister removes the mapping whose current handle is handleID.
// A handle that was already replaced by a newer Register call is not
// present in the reverse map anymore, so the newer mapping survives.
func (r *Registry) Unregister(handleID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.handles[handleID]
	if !ok {
		return
	}
	delete(r.handles, handleID)
	delete(r.sessions, identity)
}

// Lookup returns the live sink for an identity, or false when the
// identity has no current connection.
func (r *Registry) Lookup(identity string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[identity]
	if !ok {
		return nil, false
	}
	return s.sink, true
}

// Online reports how many identities currently hold a live connection.
func (r *Registry) Online() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
