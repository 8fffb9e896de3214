package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"mentorchat/domain/event"
	"mentorchat/mocks"
)

func TestFanoutWorker_DeliversToEverySink(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sink1 := mocks.NewMockEventSink(ctrl)
	sink2 := mocks.NewMockEventSink(ctrl)

	evt := event.MessageStored{
		ID:       uuid.New(),
		Sender:   "alice",
		Receiver: "bob",
		Body:     "hello",
	}

	delivered := make(chan struct{}, 2)
	sink1.EXPECT().Consume(gomock.Any(), evt).
		DoAndReturn(func(ctx context.Context, e event.DomainEvent) error {
			delivered <- struct{}{}
			return nil
		})
	sink2.EXPECT().Consume(gomock.Any(), evt).
		DoAndReturn(func(ctx context.Context, e event.DomainEvent) error {
			delivered <- struct{}{}
			return nil
		})

	events := make(chan event.DomainEvent, 1)
	worker := NewFanoutWorker(slog.Default(), events, 100*time.Millisecond, sink1, sink2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	events <- evt

	for i := 0; i < 2; i++ {
		select {
		case <-delivered:
		case <-time.After(time.Second):
			req.Fail("sink did not receive the event in time")
		}
	}
}

func TestFanoutWorker_SinkFailureDoesNotStopOthers(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	failing := mocks.NewMockEventSink(ctrl)
	healthy := mocks.NewMockEventSink(ctrl)

	evt := event.MessageStored{ID: uuid.New(), Sender: "alice", Receiver: "bob"}

	failing.EXPECT().Consume(gomock.Any(), evt).Return(context.DeadlineExceeded)
	delivered := make(chan struct{}, 1)
	healthy.EXPECT().Consume(gomock.Any(), evt).
		DoAndReturn(func(ctx context.Context, e event.DomainEvent) error {
			delivered <- struct{}{}
			return nil
		})

	events := make(chan event.DomainEvent, 1)
	worker := NewFanoutWorker(slog.Default(), events, 100*time.Millisecond, failing, healthy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	events <- evt

	select {
	case <-delivered:
	case <-time.After(time.Second):
		req.Fail("healthy sink should still receive the event")
	}
}
