//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/google/uuid"

	"mentorchat/domain/event"
)

// EventSink is the delivery end of one live connection (or of a
// permanent in-process consumer such as the search indexer).
// Consume must never block the caller for long: transports buffer and
// drop, they do not push back into the relay.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry maps a logical identity to at most one live connection.
// All operations are total: none of them can fail.
type IRegistry interface {
	// Register records or replaces the mapping for identity. Last
	// announcement wins; the previous handle becomes stale.
	Register(identity string, handleID uuid.UUID, sink EventSink)
	// Unregister removes the mapping whose CURRENT handle is handleID.
	// A stale handle is a no-op and never evicts a newer connection.
	Unregister(handleID uuid.UUID)
	// Lookup returns the live sink for identity, if any.
	Lookup(identity string) (EventSink, bool)
	// Online reports the number of registered identities.
	Online() int
}

type WorkerName string

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}
