package sink

import (
	"context"
	"log/slog"

	"mentorchat/domain"
	"mentorchat/domain/event"
	"mentorchat/search"
)

// SearchSink feeds the full-text index from stored-message events.
// Indexing failures are logged, never propagated: search lagging is
// acceptable, blocking the fan-out is not.
type SearchSink struct {
	index *search.Index
	log   *slog.Logger
}

func NewSearchSink(index *search.Index, log *slog.Logger) SearchSink {
	return SearchSink{index: index, log: log}
}

func (s SearchSink) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.MessageStored)
	if !ok {
		return nil
	}
	if err := s.index.IndexMessage(toMessage(evt)); err != nil {
		s.log.Error("failed to index message", "id", evt.ID, "error", err)
	}
	return nil
}

func toMessage(e event.MessageStored) domain.Message {
	return domain.Message{
		ID:        e.ID,
		Sender:    e.Sender,
		Receiver:  e.Receiver,
		Body:      e.Body,
		Lang:      e.Lang,
		CreatedAt: e.CreatedAt,
	}
}
