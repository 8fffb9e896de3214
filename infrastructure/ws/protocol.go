// Package ws exposes the relay over a persistent websocket: clients
// announce an identity, send messages, and receive live pushes and
// backfills as tagged JSON envelopes.
package ws

import (
	"encoding/json"
	"time"

	"mentorchat/domain/event"
)

// Envelope is the wire frame in both directions. Payload shape is
// selected by Type; anything malformed is rejected with an error
// envelope rather than ignored.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// client -> relay
	TypeJoin     = "join"
	TypeSend     = "send"
	TypeBackfill = "backfill"

	// relay -> client
	TypeJoined  = "joined"
	TypeReceive = "receive"
	TypeError   = "error"
)

type JoinPayload struct {
	Identity string `json:"identity"`
	// Token is checked when present; its username claim must match
	// Identity. Connections without a token are accepted for parity
	// with the HTTP surface, which does its own auth.
	Token string `json:"token,omitempty"`
}

type BackfillPayload struct {
	Since time.Time `json:"since"`
}

type JoinedPayload struct {
	Identity string `json:"identity"`
}

type ReceivePayload struct {
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Body      string    `json:"body"`
	Lang      string    `json:"lang,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	CodeValidation   = "validation"
	CodePersistence  = "persistence"
	CodeUnauthorized = "unauthorized"
	CodeNotJoined    = "not_joined"
)

func newEnvelope(envelopeType string, payload any) Envelope {
	raw, _ := json.Marshal(payload)
	return Envelope{Type: envelopeType, Payload: raw}
}

func toReceiveEnvelope(e event.MessageStored) Envelope {
	return newEnvelope(TypeReceive, ReceivePayload{
		Sender:    e.Sender,
		Receiver:  e.Receiver,
		Body:      e.Body,
		Lang:      e.Lang,
		CreatedAt: e.CreatedAt,
	})
}

func errorEnvelope(code, message string) Envelope {
	return newEnvelope(TypeError, ErrorPayload{Code: code, Message: message})
}
