package event

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is anything worth telling a sink about.
type DomainEvent interface {
	Pair() string
}

// MessageStored is emitted after a message became durable.
// It is the only event pushed to recipient connections: a message is
// never delivered live without also being on disk.
type MessageStored struct {
	ID        uuid.UUID
	Sender    string
	Receiver  string
	Body      string
	Lang      string
	CreatedAt time.Time
}

func (m MessageStored) Pair() string {
	a, b := m.Sender, m.Receiver
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}
