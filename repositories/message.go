//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"mentorchat/domain"
	apperrors "mentorchat/errors"
)

type IMessageRepository interface {
	Append(sender, receiver, body, lang string) (domain.Message, error)
	Conversation(identityA, identityB string) ([]domain.Message, error)
	InboxSince(receiver string, since time.Time) ([]domain.Message, error)
	DistinctSenders(receiver string) ([]string, error)
}

// MessageRepository persists chat records in BadgerDB.
// History is append-only: no update or delete path exists on purpose.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// diskMessage is the stored JSON shape of a record. It never changes
// after the write transaction commits.
type diskMessage struct {
	ID        uuid.UUID `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Body      string    `json:"body"`
	Lang      string    `json:"lang"`
	CreatedAt time.Time `json:"createdAt"`
}

// Each record is written under two keys in one transaction:
//
//	conv:{pair}:{timestamp_padded}:{uuid}   conversation history scans
//	inbox:{receiver}:{timestamp_padded}:{uuid}   backfill + notifications
//
// The 19-digit zero padding keeps Badger's lexicographic key order equal
// to chronological order, and the trailing UUID disambiguates two
// messages landing on the same nanosecond.
func convKey(pair string, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("conv:%s:%019d:%s", pair, at.UnixNano(), id))
}

func inboxKey(receiver string, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("inbox:%s:%019d:%s", receiver, at.UnixNano(), id))
}

// Append assigns the server timestamp and identifier, then persists the
// record. The returned message is the durable truth the caller may
// deliver live. Any storage failure surfaces as a PersistenceError and
// leaves no partial state behind (single transaction).
func (m MessageRepository) Append(sender, receiver, body, lang string) (domain.Message, error) {
	record := diskMessage{
		ID:        uuid.New(),
		Sender:    sender,
		Receiver:  receiver,
		Body:      body,
		Lang:      lang,
		CreatedAt: time.Now().UTC(),
	}
	bytes, err := json.Marshal(record)
	if err != nil {
		return domain.Message{}, apperrors.NewPersistenceError("append", err)
	}

	pair := domain.PairKey(sender, receiver)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(convKey(pair, record.CreatedAt, record.ID), bytes); err != nil {
			return err
		}
		return txn.Set(inboxKey(receiver, record.CreatedAt, record.ID), bytes)
	})
	if err != nil {
		return domain.Message{}, apperrors.NewPersistenceError("append", err)
	}
	return toMessage(record), nil
}

// Conversation returns the complete ordered history of the unordered
// pair {identityA, identityB}. Symmetric in argument order, ascending
// by creation time, a finite snapshot at call time.
func (m MessageRepository) Conversation(identityA, identityB string) ([]domain.Message, error) {
	prefix := []byte(fmt.Sprintf("conv:%s:", domain.PairKey(identityA, identityB)))
	records, err := m.scan(prefix, nil)
	if err != nil {
		return nil, apperrors.NewPersistenceError("conversation query", err)
	}
	return lo.Map(records, func(r diskMessage, _ int) domain.Message { return toMessage(r) }), nil
}

// InboxSince returns every message addressed to receiver with a
// creation time strictly after since, oldest first. This is the
// reconnect backfill path: a client that was offline replays what it
// missed from durable state.
func (m MessageRepository) InboxSince(receiver string, since time.Time) ([]domain.Message, error) {
	prefix := []byte(fmt.Sprintf("inbox:%s:", receiver))
	after := &since
	records, err := m.scan(prefix, after)
	if err != nil {
		return nil, apperrors.NewPersistenceError("inbox query", err)
	}
	return lo.Map(records, func(r diskMessage, _ int) domain.Message { return toMessage(r) }), nil
}

// DistinctSenders lists every identity that ever messaged receiver,
// ordered by first-message time, each appearing once. The inbox prefix
// bounds the scan to the receiver's own messages.
func (m MessageRepository) DistinctSenders(receiver string) ([]string, error) {
	prefix := []byte(fmt.Sprintf("inbox:%s:", receiver))
	records, err := m.scan(prefix, nil)
	if err != nil {
		return nil, apperrors.NewPersistenceError("notification query", err)
	}

	seen := make(map[string]struct{}, len(records))
	var senders []string
	for _, r := range records {
		if _, ok := seen[r.Sender]; ok {
			continue
		}
		seen[r.Sender] = struct{}{}
		senders = append(senders, r.Sender)
	}
	return senders, nil
}

// scan iterates a prefix in key order (which is chronological thanks to
// the padded timestamps) and decodes each value. When after is set,
// records at or before that instant are skipped via a seek past the
// corresponding key position.
func (m MessageRepository) scan(prefix []byte, after *time.Time) ([]diskMessage, error) {
	var records []diskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := prefix
		if after != nil {
			// Seek just past every key stamped at or before `after`.
			// The UUID suffix sorts after plain digits, so appending
			// the next nanosecond is enough.
			seekKey = append(append([]byte{}, prefix...),
				[]byte(fmt.Sprintf("%019d", after.UnixNano()+1))...)
		}

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(value []byte) error {
				var record diskMessage
				if err := json.Unmarshal(value, &record); err != nil {
					// A corrupt value is logged and skipped rather than
					// failing the whole snapshot.
					m.log.Error("skipping undecodable record",
						"key", string(item.Key()), "error", err)
					return nil
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ParseKey exposes the key layout to tooling (viewer, inspector).
func ParseKey(key string) (kind, owner, stamp, id string, ok bool) {
	parts := strings.SplitN(key, ":", 4)
	if len(parts) != 4 {
		return "", "", "", "", false
	}
	return parts[0], parts[1], parts[2], parts[3], true
}

func toMessage(r diskMessage) domain.Message {
	return domain.Message{
		ID:        r.ID,
		Sender:    r.Sender,
		Receiver:  r.Receiver,
		Body:      r.Body,
		Lang:      r.Lang,
		CreatedAt: r.CreatedAt,
	}
}
