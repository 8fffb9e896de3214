//go:generate go run go.uber.org/mock/mockgen -source=notification_service.go -destination=../mocks/mock_notification_service.go -package=mocks
package services

import (
	"log/slog"
	"sort"

	"github.com/samber/lo"

	"mentorchat/repositories"
)

// Notification is one distinct correspondent of a receiver, shaped for
// the HTTP feed.
type Notification struct {
	Username string `json:"username"`
}

type INotificationService interface {
	DistinctSenders(receiver string) ([]Notification, error)
}

// NotificationService summarizes "who has messaged me" from durable
// history, independent of current connectivity. The summary is scoped
// to the receiver's own inbox; a sender never shows up in someone
// else's feed.
type NotificationService struct {
	log        *slog.Logger
	repository repositories.IMessageRepository
}

func NewNotificationService(log *slog.Logger, repository repositories.IMessageRepository) *NotificationService {
	return &NotificationService{log: log, repository: repository}
}

// DistinctSenders returns one entry per identity that ever messaged
// the receiver, alphabetically, so repeated calls are comparable.
func (s *NotificationService) DistinctSenders(receiver string) ([]Notification, error) {
	senders, err := s.repository.DistinctSenders(receiver)
	if err != nil {
		return nil, err
	}
	sort.Strings(senders)
	return lo.Map(senders, func(sender string, _ int) Notification {
		return Notification{Username: sender}
	}), nil
}
