//go:generate go run go.uber.org/mock/mockgen -source=router_service.go -destination=../mocks/mock_router_service.go -package=mocks
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/go-playground/validator/v10"

	"mentorchat/contract"
	"mentorchat/domain"
	"mentorchat/domain/event"
	apperrors "mentorchat/errors"
	"mentorchat/moderation"
	"mentorchat/observability"
	"mentorchat/repositories"
)

var validate = validator.New()

type IRouterService interface {
	Send(ctx context.Context, cmd domain.SendCommand) (domain.Message, error)
	Conversation(identityA, identityB string) ([]domain.Message, error)
	Backfill(ctx context.Context, receiver string, since time.Time) (int, error)
}

// RouterService relays one message at a time: validate, censor,
// persist, then attempt exactly one live push. Persistence always
// happens before the push; a message that is not durable is never
// delivered.
type RouterService struct {
	log             *slog.Logger
	repository      repositories.IMessageRepository
	registry        contract.IRegistry
	moderator       *moderation.Moderator
	stats           *observability.RelayStats
	events          chan<- event.DomainEvent
	deliveryTimeout time.Duration
}

func NewRouterService(log *slog.Logger, repository repositories.IMessageRepository,
	registry contract.IRegistry, moderator *moderation.Moderator,
	stats *observability.RelayStats, events chan<- event.DomainEvent,
	deliveryTimeout time.Duration) *RouterService {
	return &RouterService{
		log:             log,
		repository:      repository,
		registry:        registry,
		moderator:       moderator,
		stats:           stats,
		events:          events,
		deliveryTimeout: deliveryTimeout,
	}
}

// Send persists the message then pushes it to the receiver's live
// connection when one exists. An absent or slow receiver is a normal
// outcome, not an error: the record stays queryable either way. A
// persistence failure aborts the whole call with no partial effect.
func (s *RouterService) Send(ctx context.Context, cmd domain.SendCommand) (domain.Message, error) {
	if err := validateSend(cmd); err != nil {
		s.stats.ValidationFailures.Add(1)
		return domain.Message{}, err
	}

	body := cmd.Body
	if s.moderator != nil {
		censored, matched := s.moderator.Censor(body)
		if matched {
			s.stats.CensoredMessages.Add(1)
		}
		body = censored
	}

	stored, err := s.repository.Append(cmd.Sender, cmd.Receiver, body, detectLang(body))
	if err != nil {
		return domain.Message{}, err
	}
	s.stats.MessagesStored.Add(1)

	evt := toStoredEvent(stored)

	// Side pipeline (search index, telemetry): best effort, never
	// affects the result of this send.
	select {
	case s.events <- evt:
	default:
		s.log.Warn("event pipeline full, dropping stored-message event", "id", stored.ID)
	}

	sink, connected := s.registry.Lookup(cmd.Receiver)
	if !connected {
		s.stats.SilentMisses.Add(1)
		return stored, nil
	}

	pushCtx, cancel := context.WithTimeout(ctx, s.deliveryTimeout)
	defer cancel()
	if err := sink.Consume(pushCtx, evt); err != nil {
		// The handle may have gone stale between lookup and push.
		// Treated as "recipient not connected".
		s.log.Debug("live push failed", "receiver", cmd.Receiver, "error", err)
		s.stats.SilentMisses.Add(1)
		return stored, nil
	}
	s.stats.LivePushes.Add(1)
	return stored, nil
}

// Conversation returns the durable history of the unordered pair.
func (s *RouterService) Conversation(identityA, identityB string) ([]domain.Message, error) {
	if identityA == "" {
		return nil, apperrors.ErrEmptySender
	}
	if identityB == "" {
		return nil, apperrors.ErrEmptyReceiver
	}
	if !domain.ValidIdentity(identityA) || !domain.ValidIdentity(identityB) {
		return nil, apperrors.ErrInvalidIdentity
	}
	return s.repository.Conversation(identityA, identityB)
}

// Backfill replays every message the receiver missed since a given
// instant over their current connection. Called by the transport when
// a client reconnects and asks for it.
func (s *RouterService) Backfill(ctx context.Context, receiver string, since time.Time) (int, error) {
	sink, connected := s.registry.Lookup(receiver)
	if !connected {
		return 0, nil
	}

	missed, err := s.repository.InboxSince(receiver, since)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, m := range missed {
		pushCtx, cancel := context.WithTimeout(ctx, s.deliveryTimeout)
		err := sink.Consume(pushCtx, toStoredEvent(m))
		cancel()
		if err != nil {
			return delivered, err
		}
		delivered++
	}
	if delivered > 0 {
		s.stats.Backfills.Add(1)
	}
	return delivered, nil
}

func validateSend(cmd domain.SendCommand) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err
	}
	first := fieldErrors[0]
	// Anything beyond a missing field is a malformed identity: the
	// alphanum/min/max tags keep key delimiters out of sender and
	// receiver.
	if first.Tag() != "required" {
		return apperrors.ErrInvalidIdentity
	}
	switch first.Field() {
	case "Sender":
		return apperrors.ErrEmptySender
	case "Receiver":
		return apperrors.ErrEmptyReceiver
	default:
		return apperrors.ErrEmptyBody
	}
}

// detectLang tags the message body with its probable language
// (ISO 639-3). Short or ambiguous bodies come back as "und".
func detectLang(body string) string {
	info := whatlanggo.Detect(body)
	if !info.IsReliable() {
		return "und"
	}
	lang := whatlanggo.LangToString(info.Lang)
	if lang == "" {
		return "und"
	}
	return lang
}

func toStoredEvent(m domain.Message) event.MessageStored {
	return event.MessageStored{
		ID:        m.ID,
		Sender:    m.Sender,
		Receiver:  m.Receiver,
		Body:      m.Body,
		Lang:      m.Lang,
		CreatedAt: m.CreatedAt,
	}
}
