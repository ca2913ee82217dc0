package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service wraps the store with the conversation-level operations the
// transport needs.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the session service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With("component", "session.service"),
		now:    time.Now,
	}
}

// History returns the full event log for a session.
func (s *Service) History(ctx context.Context, sessionID string) ([]Event, error) {
	return s.store.History(ctx, sessionID)
}

// LastCategory reads the sticky category for a session.
func (s *Service) LastCategory(ctx context.Context, sessionID string) (string, error) {
	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return LastCategory(history), nil
}

// SelectCategory appends a category selection event. The choice stays active
// for all following queries until replaced by another selection.
func (s *Service) SelectCategory(ctx context.Context, sessionID, category string) error {
	return s.store.Append(ctx, sessionID, Event{
		Kind:      EventCategorySelection,
		Category:  category,
		Timestamp: s.now(),
	})
}

// RecordExchange appends the user turn and the assistant reply as one save.
func (s *Service) RecordExchange(ctx context.Context, sessionID, author, question, answer, category string) error {
	ts := s.now()
	return s.store.Append(ctx, sessionID,
		Event{Kind: EventUserTurn, Author: author, Text: question, Timestamp: ts},
		Event{Kind: EventAssistantTurn, Text: answer, Category: category, Timestamp: ts},
	)
}

// NewSessionID generates an id for surfaces without a natural one (the
// Telegram transport uses the chat id instead).
func (s *Service) NewSessionID() string {
	stamp := s.now().UTC().Format("20060102_150405")
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return stamp + "_" + suffix
}
