package retrieval

import (
	"fmt"

	apperrors "github.com/yanqian/ai-faqbot/pkg/errors"
)

// Index holds the searchable form of the corpus: one unit-normalized vector
// per entry, row i aligned with entry i. Built once at startup and never
// mutated afterwards, so concurrent readers need no synchronization.
type Index struct {
	entries     []Entry
	vectors     [][]float32
	categories  []string
	categorySet map[string]struct{}
}

// NewIndex validates alignment between entries and vectors and derives the
// category set.
func NewIndex(entries []Entry, vectors [][]float32) (*Index, error) {
	if len(entries) != len(vectors) {
		return nil, apperrors.Wrap(apperrors.CodeSchemaError,
			fmt.Sprintf("index misaligned: %d entries, %d vectors", len(entries), len(vectors)), nil)
	}
	if len(entries) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeSchemaError, "corpus is empty", nil)
	}
	dim := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, apperrors.Wrap(apperrors.CodeSchemaError,
				fmt.Sprintf("vector %d has dimension %d, expected %d", i, len(vec), dim), nil)
		}
	}

	idx := &Index{
		entries:     entries,
		vectors:     vectors,
		categorySet: make(map[string]struct{}),
	}
	for _, entry := range entries {
		if _, seen := idx.categorySet[entry.Category]; !seen {
			idx.categorySet[entry.Category] = struct{}{}
			idx.categories = append(idx.categories, entry.Category)
		}
	}
	return idx, nil
}

// Len returns the number of corpus entries.
func (x *Index) Len() int {
	return len(x.entries)
}

// Entry returns the corpus row at position i.
func (x *Index) Entry(i int) Entry {
	return x.entries[i]
}

// Categories lists distinct category labels in order of first appearance.
func (x *Index) Categories() []string {
	out := make([]string, len(x.categories))
	copy(out, x.categories)
	return out
}

// HasCategory reports whether the label exists in the corpus.
func (x *Index) HasCategory(category string) bool {
	_, ok := x.categorySet[category]
	return ok
}

// Similarities computes the cosine similarity of the query against every
// entry. Vectors are unit length, so this is a plain dot product accumulated
// in float64.
func (x *Index) Similarities(query []float32) []float64 {
	sims := make([]float64, len(x.vectors))
	for i, vec := range x.vectors {
		length := len(vec)
		if len(query) < length {
			length = len(query)
		}
		var dot float64
		for j := 0; j < length; j++ {
			dot += float64(query[j]) * float64(vec[j])
		}
		sims[i] = dot
	}
	return sims
}

// Snapshot exports the index content for persistence.
func (x *Index) Snapshot() Snapshot {
	return Snapshot{Entries: x.entries, Vectors: x.vectors}
}
