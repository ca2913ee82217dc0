// Package sessionstore provides session log persistence adapters.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/yanqian/ai-faqbot/internal/domain/session"
)

// FileStore keeps every session log in one JSON document on disk. A single
// mutex serializes the read-modify-write cycle so concurrent appends for
// different sessions cannot drop each other's events, and saves go through a
// temp file plus rename so readers never observe a partial write.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileStore constructs the store and creates the parent directory.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &FileStore{path: path, logger: logger.With("component", "sessionstore.file")}, nil
}

// History implements session.Store.
func (s *FileStore) History(_ context.Context, sessionID string) ([]session.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.loadLocked()
	return append([]session.Event(nil), all[sessionID]...), nil
}

// Append implements session.Store.
func (s *FileStore) Append(_ context.Context, sessionID string, events ...session.Event) error {
	if len(events) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.loadLocked()
	all[sessionID] = append(all[sessionID], events...)
	return s.saveLocked(all)
}

// Sessions implements session.Store.
func (s *FileStore) Sessions(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.loadLocked()
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// loadLocked reads the whole document. An unreadable or malformed file is
// treated as an empty store: availability over durability, the service keeps
// answering even if the log was damaged.
func (s *FileStore) loadLocked() map[string][]session.Event {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("session log unreadable, starting from empty history", "path", s.path, "error", err)
		}
		return make(map[string][]session.Event)
	}
	var all map[string][]session.Event
	if err := json.Unmarshal(data, &all); err != nil {
		s.logger.Warn("session log corrupt, starting from empty history", "path", s.path, "error", err)
		return make(map[string][]session.Event)
	}
	if all == nil {
		all = make(map[string][]session.Event)
	}
	return all
}

func (s *FileStore) saveLocked(all map[string][]session.Event) error {
	data, err := json.Marshal(all)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

var _ session.Store = (*FileStore)(nil)
