package retrieval

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/ai-faqbot/pkg/errors"
)

func TestNewIndexRejectsMisalignment(t *testing.T) {
	_, err := NewIndex(
		[]Entry{{Question: "q", Answer: "a", Category: "c"}},
		[][]float32{{1, 0}, {0, 1}},
	)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeSchemaError))
}

func TestNewIndexRejectsEmptyCorpus(t *testing.T) {
	_, err := NewIndex(nil, nil)
	require.Error(t, err)
}

func TestNewIndexRejectsRaggedVectors(t *testing.T) {
	_, err := NewIndex(
		[]Entry{
			{Question: "q1", Answer: "a1", Category: "c"},
			{Question: "q2", Answer: "a2", Category: "c"},
		},
		[][]float32{{1, 0}, {0, 1, 0}},
	)
	require.Error(t, err)
}

func TestIndexCategoriesPreserveFirstAppearanceOrder(t *testing.T) {
	index, err := NewIndex(
		[]Entry{
			{Question: "q1", Answer: "a1", Category: "Billing"},
			{Question: "q2", Answer: "a2", Category: "Account"},
			{Question: "q3", Answer: "a3", Category: "Billing"},
			{Question: "q4", Answer: "a4", Category: "General"},
		},
		[][]float32{{1, 0}, {0, 1}, {1, 0}, {0, 1}},
	)
	require.NoError(t, err)

	require.Equal(t, []string{"Billing", "Account", "General"}, index.Categories())
	require.True(t, index.HasCategory("Account"))
	require.False(t, index.HasCategory("Support"))
}

func TestSimilaritiesAreDotProducts(t *testing.T) {
	index := testIndex(t)
	sims := index.Similarities([]float32{0.6, 0.8, 0})
	require.Len(t, sims, 3)
	require.InDelta(t, 0.6, sims[0], 1e-9)
	require.InDelta(t, 0.8, sims[1], 1e-9)
	require.InDelta(t, 0.0, sims[2], 1e-9)
}
