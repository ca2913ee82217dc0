package retrieval

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	entries    []Entry
	categories []string
	err        error
}

func (l *stubLoader) Load(context.Context, string) ([]Entry, []string, error) {
	return l.entries, l.categories, l.err
}

type stubEmbedder struct {
	vectors    map[string][]float32
	batchCalls int
	err        error
}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.batchCalls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := e.vectors[text]
		if !ok {
			return nil, errors.New("no vector for " + text)
		}
		out[i] = vec
	}
	return out, nil
}

func (e *stubEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

type stubCategorySource struct {
	category string
	err      error
}

func (s *stubCategorySource) LastCategory(context.Context, string) (string, error) {
	return s.category, s.err
}

type stubRepo struct {
	snapshots map[string]Snapshot
	saves     int
}

func (r *stubRepo) Load(_ context.Context, fingerprint string) (Snapshot, bool, error) {
	snap, ok := r.snapshots[fingerprint]
	return snap, ok, nil
}

func (r *stubRepo) Save(_ context.Context, fingerprint string, snap Snapshot) error {
	r.saves++
	if r.snapshots == nil {
		r.snapshots = make(map[string]Snapshot)
	}
	r.snapshots[fingerprint] = snap
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		CorpusPath:          "faq.csv",
		EmbeddingModel:      "test-model",
		SimilarityThreshold: 0.57,
		BoostFactor:         0.07,
		MinQueryTokens:      3,
		TooShort:            Sentinel{Question: "Short query", Answer: "Please phrase your question in more detail.", Category: "System"},
		NoMatch:             Sentinel{Question: "No matching question", Answer: "no answer found", Category: "Unknown"},
		Gratitude:           Sentinel{Question: "Thanks", Answer: "You're welcome!", Category: "System"},
		GratitudePhrases:    []string{"thanks", "thank you"},
	}
}

func passwordCorpus() (*stubLoader, *stubEmbedder) {
	loader := &stubLoader{
		entries: []Entry{
			{Question: "How do I reset my password?", Answer: "Use the reset link.", Category: "Account"},
			{Question: "What are your hours?", Answer: "9 to 5.", Category: "General"},
		},
		categories: []string{"Account", "General"},
	}
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"How do I reset my password?":  {1, 0, 0},
		"What are your hours?":         {0, 1, 0},
		"How can I reset my password":  {0.96, 0.28, 0},
		"What color is your building?": {0.1, 0.2, 0},
	}}
	return loader, embedder
}

func newTestService(t *testing.T, loader *stubLoader, embedder *stubEmbedder, sessions CategorySource) Service {
	t.Helper()
	svc := NewService(testConfig(), loader, embedder, &stubRepo{}, sessions, testLogger())
	require.NoError(t, svc.Initialize(context.Background()))
	return svc
}

func TestAnswerMatchesParaphrasedQuestion(t *testing.T) {
	loader, embedder := passwordCorpus()
	svc := newTestService(t, loader, embedder, nil)

	answer := svc.Answer(context.Background(), "s1", "How can I reset my password")
	require.True(t, answer.Found)
	require.Equal(t, "Account", answer.Category)
	require.Equal(t, "Use the reset link.", answer.Answer)
	require.GreaterOrEqual(t, answer.Similarity, 0.57)
}

func TestAnswerExactQuestionScoresNearOne(t *testing.T) {
	loader, embedder := passwordCorpus()
	svc := newTestService(t, loader, embedder, nil)

	answer := svc.Answer(context.Background(), "s1", "How do I reset my password?")
	require.True(t, answer.Found)
	require.InDelta(t, 1.0, answer.Similarity, 1e-6)
	require.Equal(t, "How do I reset my password?", answer.Question)
}

func TestAnswerTooShortQuery(t *testing.T) {
	loader, embedder := passwordCorpus()
	svc := newTestService(t, loader, embedder, nil)

	for _, query := range []string{"banana", "reset password", ""} {
		answer := svc.Answer(context.Background(), "s1", query)
		require.False(t, answer.Found)
		require.Equal(t, "Short query", answer.Question)
		require.Zero(t, answer.Similarity)
	}
}

func TestAnswerGratitude(t *testing.T) {
	loader, embedder := passwordCorpus()
	svc := newTestService(t, loader, embedder, nil)

	answer := svc.Answer(context.Background(), "s1", "  Thank You  ")
	require.False(t, answer.Found)
	require.Equal(t, "You're welcome!", answer.Answer)
}

func TestAnswerNoMatchBelowThreshold(t *testing.T) {
	loader, embedder := passwordCorpus()
	svc := newTestService(t, loader, embedder, nil)

	answer := svc.Answer(context.Background(), "s1", "What color is your building?")
	require.False(t, answer.Found)
	require.Equal(t, "No matching question", answer.Question)
	require.InDelta(t, 0.2, answer.Similarity, 1e-9)
}

func TestAnswerEmbeddingFailureFallsBackToNoMatch(t *testing.T) {
	loader, embedder := passwordCorpus()
	svc := newTestService(t, loader, embedder, nil)

	embedder.err = errors.New("provider down")
	answer := svc.Answer(context.Background(), "s1", "How can I reset my password")
	require.False(t, answer.Found)
	require.Equal(t, "No matching question", answer.Question)
}

func TestAnswerUsesSessionCategoryBoost(t *testing.T) {
	loader := &stubLoader{
		entries: []Entry{
			{Question: "account question", Answer: "account answer", Category: "Account"},
			{Question: "general question", Answer: "general answer", Category: "General"},
		},
		categories: []string{"Account", "General"},
	}
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"account question":       {1, 0},
		"general question":       {0, 1},
		"an ambiguous user query": {0.60, 0.64},
	}}

	plain := newTestService(t, loader, embedder, &stubCategorySource{})
	require.Equal(t, "General", plain.Answer(context.Background(), "s1", "an ambiguous user query").Category)

	biased := newTestService(t, loader, embedder, &stubCategorySource{category: "Account"})
	require.Equal(t, "Account", biased.Answer(context.Background(), "s1", "an ambiguous user query").Category)
}

func TestAnswerCategoryLookupFailureStillAnswers(t *testing.T) {
	loader, embedder := passwordCorpus()
	svc := newTestService(t, loader, embedder, &stubCategorySource{err: errors.New("store down")})

	answer := svc.Answer(context.Background(), "s1", "How can I reset my password")
	require.True(t, answer.Found)
}

func TestInitializeReusesSnapshot(t *testing.T) {
	loader, embedder := passwordCorpus()
	cfg := testConfig()

	repo := &stubRepo{}
	first := NewService(cfg, loader, embedder, repo, nil, testLogger())
	require.NoError(t, first.Initialize(context.Background()))
	require.Equal(t, 1, embedder.batchCalls)
	require.Equal(t, 1, repo.saves)

	second := NewService(cfg, loader, embedder, repo, nil, testLogger())
	require.NoError(t, second.Initialize(context.Background()))
	// snapshot hit: the corpus is not embedded again
	require.Equal(t, 1, embedder.batchCalls)

	answer := second.Answer(context.Background(), "s1", "How can I reset my password")
	require.True(t, answer.Found)
}

func TestInitializeFailsOnLoaderError(t *testing.T) {
	loader := &stubLoader{err: errors.New("file missing")}
	svc := NewService(testConfig(), loader, &stubEmbedder{}, &stubRepo{}, nil, testLogger())
	require.Error(t, svc.Initialize(context.Background()))
}

func TestCategoriesExposedInOrder(t *testing.T) {
	loader, embedder := passwordCorpus()
	svc := newTestService(t, loader, embedder, nil)
	require.Equal(t, []string{"Account", "General"}, svc.Categories())
}
