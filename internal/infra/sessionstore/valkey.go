package sessionstore

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-faqbot/internal/domain/session"
)

// ValkeyStore keeps each session log in its own list key, so appends are
// atomic single-key writes and sessions never contend with each other.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	logger *slog.Logger
}

// NewValkeyStore constructs a store backed by a Valkey-compatible database.
func NewValkeyStore(client valkey.Client, prefix string, logger *slog.Logger) *ValkeyStore {
	if prefix == "" {
		prefix = "faqbot"
	}
	return &ValkeyStore{client: client, prefix: prefix, logger: logger.With("component", "sessionstore.valkey")}
}

// History implements session.Store.
func (s *ValkeyStore) History(ctx context.Context, sessionID string) ([]session.Event, error) {
	resp := s.client.Do(ctx, s.client.B().Lrange().Key(s.sessionKey(sessionID)).Start(0).Stop(-1).Build())
	items, err := resp.AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	events := make([]session.Event, 0, len(items))
	for _, item := range items {
		var event session.Event
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			// skip the damaged element instead of losing the session
			s.logger.Warn("skipping corrupt session event", "session", sessionID, "error", err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// Append implements session.Store.
func (s *ValkeyStore) Append(ctx context.Context, sessionID string, events ...session.Event) error {
	if len(events) == 0 {
		return nil
	}
	payloads := make([]string, 0, len(events))
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		payloads = append(payloads, string(data))
	}
	cmd := s.client.B().Rpush().Key(s.sessionKey(sessionID)).Element(payloads...).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return err
	}
	return s.client.Do(ctx, s.client.B().Sadd().Key(s.indexKey()).Member(sessionID).Build()).Error()
}

// Sessions implements session.Store.
func (s *ValkeyStore) Sessions(ctx context.Context) ([]string, error) {
	resp := s.client.Do(ctx, s.client.B().Smembers().Key(s.indexKey()).Build())
	ids, err := resp.AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	return ids, nil
}

func (s *ValkeyStore) sessionKey(id string) string {
	return s.prefix + ":session:" + id
}

func (s *ValkeyStore) indexKey() string {
	return s.prefix + ":sessions"
}

var _ session.Store = (*ValkeyStore)(nil)
