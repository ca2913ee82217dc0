package sessionstore

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/ai-faqbot/internal/domain/session"
)

// MemoryStore is an in-memory session.Store used for tests/dev.
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[string][]session.Event
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{logs: make(map[string][]session.Event)}
}

// History implements session.Store.
func (s *MemoryStore) History(_ context.Context, sessionID string) ([]session.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]session.Event(nil), s.logs[sessionID]...), nil
}

// Append implements session.Store.
func (s *MemoryStore) Append(_ context.Context, sessionID string, events ...session.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[sessionID] = append(s.logs[sessionID], events...)
	return nil
}

// Sessions implements session.Store.
func (s *MemoryStore) Sessions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.logs))
	for id := range s.logs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

var _ session.Store = (*MemoryStore)(nil)
