// Package sink hosts the EventSink implementations: the buffered
// per-connection sink used for live delivery and the permanent
// in-process sinks fed by the fan-out worker.
package sink

import (
	"context"

	"mentorchat/domain/event"
)

// ConnectionSink bridges the router to one websocket connection. The
// write pump owns the channel's receiving end; Consume never blocks:
// when the buffer is full the event is dropped, which the relay treats
// the same as "recipient not connected".
type ConnectionSink struct {
	Events chan event.DomainEvent
}

func NewConnectionSink(bufferSize int) *ConnectionSink {
	return &ConnectionSink{Events: make(chan event.DomainEvent, bufferSize)}
}

func (s *ConnectionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Backpressure: a slow client loses live pushes and recovers
		// them later through backfill.
		return nil
	}
}
