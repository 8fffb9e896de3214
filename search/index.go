// Package search maintains a full-text index of stored messages so
// users can search their own conversations.
package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/blugelabs/bluge"

	"mentorchat/domain"
)

// Hit is one search result, already restricted to conversations the
// querying identity participates in.
type Hit struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func Open(path string, log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	return &Index{writer: writer, log: log}, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

// IndexMessage upserts one stored message. Indexing is fed by a
// fan-out sink after persistence, so the index may lag the store by a
// moment but never contains a message that is not durable.
func (i *Index) IndexMessage(m domain.Message) error {
	doc := bluge.NewDocument(m.ID.String()).
		AddField(bluge.NewKeywordField("sender", m.Sender).StoreValue()).
		AddField(bluge.NewKeywordField("receiver", m.Receiver).StoreValue()).
		AddField(bluge.NewTextField("body", m.Body).StoreValue()).
		AddField(bluge.NewKeywordField("created_at", m.CreatedAt.Format(time.RFC3339Nano)).StoreValue())
	return i.writer.Update(doc.ID(), doc)
}

// Search returns the best matches for terms among messages where
// identity is either side of the conversation.
func (i *Index) Search(ctx context.Context, identity, terms string, limit int) ([]Hit, error) {
	participant := bluge.NewBooleanQuery().
		AddShould(bluge.NewTermQuery(identity).SetField("sender")).
		AddShould(bluge.NewTermQuery(identity).SetField("receiver")).
		SetMinShould(1)

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("body")).
		AddMust(participant)

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Error("failed to close index reader", "error", err)
		}
	}()

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var hits []Hit
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}

		var hit Hit
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.ID = string(value)
			case "sender":
				hit.Sender = string(value)
			case "receiver":
				hit.Receiver = string(value)
			case "body":
				hit.Body = string(value)
			case "created_at":
				if at, err := time.Parse(time.RFC3339Nano, string(value)); err == nil {
					hit.CreatedAt = at
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
