package retrieval

import "context"

// Embedder produces unit-length embeddings for free form text.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// CorpusLoader reads the FAQ table from its tabular source. Categories are
// distinct labels in order of first appearance, with empty values already
// replaced by the default label.
type CorpusLoader interface {
	Load(ctx context.Context, path string) ([]Entry, []string, error)
}

// IndexRepository caches the embedded corpus between restarts so startup can
// skip the batch embedding step. The fingerprint covers corpus content and
// embedding model; a stale snapshot is simply a miss.
type IndexRepository interface {
	Load(ctx context.Context, fingerprint string) (Snapshot, bool, error)
	Save(ctx context.Context, fingerprint string, snap Snapshot) error
}

// Snapshot is the persistable form of an Index.
type Snapshot struct {
	Entries []Entry
	Vectors [][]float32
}

// CategorySource reports the category a session last selected, or "" when the
// session never picked one.
type CategorySource interface {
	LastCategory(ctx context.Context, sessionID string) (string, error)
}
