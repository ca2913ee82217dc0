package corpusrepo

import (
	"context"
	"sync"

	"github.com/yanqian/ai-faqbot/internal/domain/retrieval"
)

// MemoryRepository is an in-memory IndexRepository used for tests/dev. It
// offers no persistence across restarts, so startup always re-embeds.
type MemoryRepository struct {
	mu        sync.RWMutex
	snapshots map[string]retrieval.Snapshot
}

// NewMemoryRepository constructs a repository backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{snapshots: make(map[string]retrieval.Snapshot)}
}

// Load implements retrieval.IndexRepository.
func (r *MemoryRepository) Load(_ context.Context, fingerprint string) (retrieval.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.snapshots[fingerprint]
	return snap, ok, nil
}

// Save implements retrieval.IndexRepository.
func (r *MemoryRepository) Save(_ context.Context, fingerprint string, snap retrieval.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[fingerprint] = snap
	return nil
}

var _ retrieval.IndexRepository = (*MemoryRepository)(nil)
