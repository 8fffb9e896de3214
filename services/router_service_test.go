package services_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"mentorchat/domain"
	"mentorchat/domain/event"
	apperrors "mentorchat/errors"
	"mentorchat/mocks"
	"mentorchat/moderation"
	"mentorchat/observability"
	"mentorchat/services"
)

const deliveryTimeout = 100 * time.Millisecond

func newRouterUnderTest(t *testing.T, repository *mocks.MockIMessageRepository,
	registry *mocks.MockIRegistry, moderator *moderation.Moderator) (*services.RouterService, *observability.RelayStats) {
	t.Helper()
	stats := observability.NewRelayStats(nil)
	events := make(chan event.DomainEvent, 16)
	router := services.NewRouterService(slog.Default(), repository, registry, moderator,
		stats, events, deliveryTimeout)
	return router, stats
}

func storedMessage(sender, receiver, body string) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		Sender:    sender,
		Receiver:  receiver,
		Body:      body,
		Lang:      "eng",
		CreatedAt: time.Now().UTC(),
	}
}

func TestRouterService_Send_DeliversToConnectedReceiver(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	registry := mocks.NewMockIRegistry(ctrl)
	sink := mocks.NewMockEventSink(ctrl)
	router, stats := newRouterUnderTest(t, repository, registry, nil)

	stored := storedMessage("alice", "bob", "hello")

	// Given bob holds a live connection
	repository.EXPECT().
		Append("alice", "bob", "hello", gomock.Any()).
		Return(stored, nil)
	registry.EXPECT().Lookup("bob").Return(sink, true)
	sink.EXPECT().
		Consume(gomock.Any(), gomock.AssignableToTypeOf(event.MessageStored{})).
		Return(nil)

	// When alice sends to bob
	result, err := router.Send(context.Background(),
		domain.SendCommand{Sender: "alice", Receiver: "bob", Body: "hello"})

	// Then the durable record comes back and one push happened
	req.NoError(err)
	req.Equal(stored, result)
	req.Equal(uint64(1), stats.LivePushes.Load())
	req.Zero(stats.SilentMisses.Load())
}

func TestRouterService_Send_SilentMissWhenReceiverAbsent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	registry := mocks.NewMockIRegistry(ctrl)
	router, stats := newRouterUnderTest(t, repository, registry, nil)

	stored := storedMessage("alice", "bob", "hello")

	// Given bob is not connected. Note the registry sees only a
	// lookup: a missed delivery never mutates it.
	repository.EXPECT().
		Append("alice", "bob", "hello", gomock.Any()).
		Return(stored, nil)
	registry.EXPECT().Lookup("bob").Return(nil, false)

	// When alice sends to bob
	result, err := router.Send(context.Background(),
		domain.SendCommand{Sender: "alice", Receiver: "bob", Body: "hello"})

	// Then the send still succeeds
	req.NoError(err)
	req.Equal(stored, result)
	req.Equal(uint64(1), stats.SilentMisses.Load())
	req.Zero(stats.LivePushes.Load())
}

func TestRouterService_Send_ValidationRejectsEmptyFields(t *testing.T) {
	tests := []struct {
		description string
		cmd         domain.SendCommand
		wantErr     error
	}{
		{"Should reject an empty sender",
			domain.SendCommand{Receiver: "bob", Body: "hi"}, apperrors.ErrEmptySender},
		{"Should reject an empty receiver",
			domain.SendCommand{Sender: "alice", Body: "hi"}, apperrors.ErrEmptyReceiver},
		{"Should reject an empty body",
			domain.SendCommand{Sender: "alice", Receiver: "bob"}, apperrors.ErrEmptyBody},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			// No expectations: the store must never be touched.
			repository := mocks.NewMockIMessageRepository(ctrl)
			registry := mocks.NewMockIRegistry(ctrl)
			router, stats := newRouterUnderTest(t, repository, registry, nil)

			_, err := router.Send(context.Background(), tt.cmd)

			req.ErrorIs(err, tt.wantErr)
			req.Equal(uint64(1), stats.ValidationFailures.Load())
		})
	}
}

func TestRouterService_Send_RejectsIdentitiesCarryingKeyDelimiters(t *testing.T) {
	tests := []struct {
		description string
		cmd         domain.SendCommand
	}{
		{"Should reject a receiver containing a colon",
			domain.SendCommand{Sender: "mallory", Receiver: "bob:evil", Body: "hi"}},
		{"Should reject a receiver containing a pipe",
			domain.SendCommand{Sender: "mallory", Receiver: "bob|x", Body: "hi"}},
		{"Should reject a sender shaped like an inbox prefix",
			domain.SendCommand{Sender: "inbox:bob", Receiver: "bob", Body: "hi"}},
		{"Should reject an overlong receiver",
			domain.SendCommand{Sender: "alice", Receiver: strings.Repeat("b", 33), Body: "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			// No expectations: a malformed identity must never reach
			// the store, where it would alias another user's keys.
			repository := mocks.NewMockIMessageRepository(ctrl)
			registry := mocks.NewMockIRegistry(ctrl)
			router, stats := newRouterUnderTest(t, repository, registry, nil)

			_, err := router.Send(context.Background(), tt.cmd)

			req.ErrorIs(err, apperrors.ErrInvalidIdentity)
			req.Equal(uint64(1), stats.ValidationFailures.Load())
		})
	}
}

func TestRouterService_Conversation_RejectsIdentitiesCarryingKeyDelimiters(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	// No expectations: the pair {alice, bob:x} must not turn into a
	// prefix scan that overlaps bob's conversations.
	repository := mocks.NewMockIMessageRepository(ctrl)
	registry := mocks.NewMockIRegistry(ctrl)
	router, _ := newRouterUnderTest(t, repository, registry, nil)

	_, err := router.Conversation("alice", "bob:x")
	req.ErrorIs(err, apperrors.ErrInvalidIdentity)

	_, err = router.Conversation("inbox:bob", "alice")
	req.ErrorIs(err, apperrors.ErrInvalidIdentity)
}

func TestRouterService_Send_AllowsSelfMessage(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	registry := mocks.NewMockIRegistry(ctrl)
	router, _ := newRouterUnderTest(t, repository, registry, nil)

	stored := storedMessage("alice", "alice", "note to self")
	repository.EXPECT().
		Append("alice", "alice", "note to self", gomock.Any()).
		Return(stored, nil)
	registry.EXPECT().Lookup("alice").Return(nil, false)

	_, err := router.Send(context.Background(),
		domain.SendCommand{Sender: "alice", Receiver: "alice", Body: "note to self"})

	req.NoError(err)
}

func TestRouterService_Send_PersistenceFailureAbortsBeforePush(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	// No Lookup expectation: a failed persist must never reach the
	// delivery step.
	registry := mocks.NewMockIRegistry(ctrl)
	router, stats := newRouterUnderTest(t, repository, registry, nil)

	storeErr := apperrors.NewPersistenceError("append", errors.New("disk full"))
	repository.EXPECT().
		Append("alice", "bob", "hello", gomock.Any()).
		Return(domain.Message{}, storeErr)

	_, err := router.Send(context.Background(),
		domain.SendCommand{Sender: "alice", Receiver: "bob", Body: "hello"})

	var persistence *apperrors.PersistenceError
	req.ErrorAs(err, &persistence)
	req.Zero(stats.MessagesStored.Load())
}

func TestRouterService_Send_StalePushFailureIsSilent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	registry := mocks.NewMockIRegistry(ctrl)
	sink := mocks.NewMockEventSink(ctrl)
	router, stats := newRouterUnderTest(t, repository, registry, nil)

	stored := storedMessage("alice", "bob", "hello")
	repository.EXPECT().
		Append("alice", "bob", "hello", gomock.Any()).
		Return(stored, nil)
	registry.EXPECT().Lookup("bob").Return(sink, true)
	// The handle went stale between lookup and push.
	sink.EXPECT().
		Consume(gomock.Any(), gomock.Any()).
		Return(context.Canceled)

	result, err := router.Send(context.Background(),
		domain.SendCommand{Sender: "alice", Receiver: "bob", Body: "hello"})

	req.NoError(err)
	req.Equal(stored, result)
	req.Equal(uint64(1), stats.SilentMisses.Load())
}

func TestRouterService_Send_CensorsBodyBeforePersisting(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	registry := mocks.NewMockIRegistry(ctrl)
	moderator, err := moderation.NewModerator([]string{"scam"}, '*')
	req.NoError(err)
	router, stats := newRouterUnderTest(t, repository, registry, moderator)

	stored := storedMessage("alice", "bob", "this is a ****")

	// The store only ever sees the censored body.
	repository.EXPECT().
		Append("alice", "bob", "this is a ****", gomock.Any()).
		Return(stored, nil)
	registry.EXPECT().Lookup("bob").Return(nil, false)

	_, err = router.Send(context.Background(),
		domain.SendCommand{Sender: "alice", Receiver: "bob", Body: "this is a scam"})

	req.NoError(err)
	req.Equal(uint64(1), stats.CensoredMessages.Load())
}

func TestRouterService_Backfill_ReplaysMissedMessages(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	registry := mocks.NewMockIRegistry(ctrl)
	sink := mocks.NewMockEventSink(ctrl)
	router, stats := newRouterUnderTest(t, repository, registry, nil)

	since := time.Now().UTC().Add(-time.Hour)
	missed := []domain.Message{
		storedMessage("alice", "bob", "first"),
		storedMessage("clara", "bob", "second"),
	}

	registry.EXPECT().Lookup("bob").Return(sink, true)
	repository.EXPECT().InboxSince("bob", since).Return(missed, nil)
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	delivered, err := router.Backfill(context.Background(), "bob", since)

	req.NoError(err)
	req.Equal(2, delivered)
	req.Equal(uint64(1), stats.Backfills.Load())
}

func TestRouterService_Backfill_NoOpWhenDisconnected(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	// No InboxSince expectation: nothing is read for an absent client.
	repository := mocks.NewMockIMessageRepository(ctrl)
	registry := mocks.NewMockIRegistry(ctrl)
	router, _ := newRouterUnderTest(t, repository, registry, nil)

	registry.EXPECT().Lookup("bob").Return(nil, false)

	delivered, err := router.Backfill(context.Background(), "bob", time.Time{})

	req.NoError(err)
	req.Zero(delivered)
}
