package workers

import (
	"context"
	"log/slog"
	"time"

	"mentorchat/contract"
	"mentorchat/domain/event"
)

// FanoutWorker broadcasts stored-message events to the permanent
// in-process sinks (search indexer, telemetry). Best-effort side
// pipeline: no delivery, ordering, or retry guarantees. Live delivery
// to recipients does NOT go through here; the router pushes that
// synchronously after persistence.
type FanoutWorker struct {
	log         *slog.Logger
	events      <-chan event.DomainEvent
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

func NewFanoutWorker(log *slog.Logger, events <-chan event.DomainEvent,
	sinkTimeout time.Duration, sinks ...contract.EventSink) *FanoutWorker {
	return &FanoutWorker{log: log, events: events, sinks: sinks, sinkTimeout: sinkTimeout}
}

func (w *FanoutWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		case evt := <-w.events:
			w.fanout(ctx, evt)
		}
	}
}

// fanout delivers one event to every sink, each under its own timeout
// so a wedged consumer cannot stall the pipeline.
func (w *FanoutWorker) fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Debug("sink rejected event", "error", err)
		}
		cancel()
	}
}
