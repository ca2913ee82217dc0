package embedding

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/yanqian/ai-faqbot/internal/domain/retrieval"
	apperrors "github.com/yanqian/ai-faqbot/pkg/errors"
)

// DeterministicEmbedder avoids network calls by hashing text into a unit
// vector. Used for dev wiring and tests; it is not semantically meaningful.
type DeterministicEmbedder struct {
	dim int
}

// NewDeterministicEmbedder constructs the embedder.
func NewDeterministicEmbedder(dim int) *DeterministicEmbedder {
	if dim <= 0 {
		dim = 32
	}
	return &DeterministicEmbedder{dim: dim}
}

// EmbedBatch converts each text into a normalized pseudo-random vector.
func (e *DeterministicEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, apperrors.Wrap(apperrors.CodeEmbeddingError, "cannot embed empty text", nil)
		}
		vector := make([]float32, e.dim)
		hash := fnv.New64a()
		_, _ = hash.Write([]byte(text))
		seed := hash.Sum64()
		for j := 0; j < e.dim; j++ {
			seed = seed*1099511628211 + 1469598103934665603
			vector[j] = float32(seed%997) / 997.0
		}
		vectors[i] = normalize(vector)
	}
	return vectors, nil
}

// EmbedOne embeds a single text.
func (e *DeterministicEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

var _ retrieval.Embedder = (*DeterministicEmbedder)(nil)
