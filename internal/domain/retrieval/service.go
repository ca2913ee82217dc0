package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"

	apperrors "github.com/yanqian/ai-faqbot/pkg/errors"
)

// Service owns the corpus lifecycle and answers free-text questions.
type Service interface {
	// Initialize loads and embeds the corpus. Called once at startup;
	// failure is fatal to the whole service.
	Initialize(ctx context.Context) error
	// Answer runs the full retrieval flow for one user message. It never
	// fails: per-request errors degrade to the no-match sentinel so the
	// transport always has a text reply to deliver.
	Answer(ctx context.Context, sessionID, query string) Answer
	// Categories lists corpus categories in order of first appearance.
	Categories() []string
}

type service struct {
	cfg        Config
	loader     CorpusLoader
	embedder   Embedder
	repo       IndexRepository
	sessions   CategorySource
	logger     *slog.Logger
	index      *Index
	categories []string
}

// NewService wires up the retrieval domain.
func NewService(cfg Config, loader CorpusLoader, embedder Embedder, repo IndexRepository, sessions CategorySource, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		loader:   loader,
		embedder: embedder,
		repo:     repo,
		sessions: sessions,
		logger:   logger.With("component", "retrieval.service"),
	}
}

func (s *service) Initialize(ctx context.Context) error {
	entries, categories, err := s.loader.Load(ctx, s.cfg.CorpusPath)
	if err != nil {
		return err
	}

	fingerprint := corpusFingerprint(s.cfg.EmbeddingModel, entries)
	if snap, ok := s.loadSnapshot(ctx, fingerprint); ok {
		index, err := NewIndex(snap.Entries, snap.Vectors)
		if err == nil {
			s.index = index
			s.categories = categories
			s.logger.Info("index restored from snapshot", "entries", index.Len(), "categories", len(categories))
			return nil
		}
		s.logger.Warn("snapshot rejected, re-embedding corpus", "error", err)
	}

	questions := make([]string, len(entries))
	for i, entry := range entries {
		questions[i] = entry.Question
	}
	vectors, err := s.embedder.EmbedBatch(ctx, questions)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeEmbeddingError, "corpus embedding failed", err)
	}
	index, err := NewIndex(entries, vectors)
	if err != nil {
		return err
	}
	s.index = index
	s.categories = categories

	if s.repo != nil {
		if err := s.repo.Save(ctx, fingerprint, index.Snapshot()); err != nil {
			s.logger.Warn("index snapshot save failed", "error", err)
		}
	}
	s.logger.Info("corpus embedded", "entries", index.Len(), "categories", len(categories))
	return nil
}

func (s *service) Answer(ctx context.Context, sessionID, query string) Answer {
	if answer, ok := s.gratitudeAnswer(query); ok {
		return answer
	}
	if len(strings.Fields(query)) < s.cfg.MinQueryTokens {
		return s.cfg.TooShort.answer(0)
	}

	activeCategory := ""
	if s.sessions != nil && sessionID != "" {
		category, err := s.sessions.LastCategory(ctx, sessionID)
		if err != nil {
			s.logger.Warn("category lookup failed, ranking without boost", "session", sessionID, "error", err)
		} else {
			activeCategory = category
		}
	}

	queryVec, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		s.logger.Error("query embedding failed", "session", sessionID, "error", err)
		return s.cfg.NoMatch.answer(0)
	}

	answer := Rank(queryVec, s.index, activeCategory, s.cfg.BoostFactor, s.cfg.SimilarityThreshold, s.cfg.NoMatch)
	s.logger.Debug("query ranked",
		"session", sessionID,
		"category", answer.Category,
		"similarity", answer.Similarity,
		"found", answer.Found,
		"active_category", activeCategory)
	return answer
}

func (s *service) Categories() []string {
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *service) gratitudeAnswer(query string) (Answer, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	for _, phrase := range s.cfg.GratitudePhrases {
		if trimmed == strings.ToLower(phrase) {
			return s.cfg.Gratitude.answer(0), true
		}
	}
	return Answer{}, false
}

func (s *service) loadSnapshot(ctx context.Context, fingerprint string) (Snapshot, bool) {
	if s.repo == nil {
		return Snapshot{}, false
	}
	snap, ok, err := s.repo.Load(ctx, fingerprint)
	if err != nil {
		s.logger.Warn("index snapshot load failed, re-embedding corpus", "error", err)
		return Snapshot{}, false
	}
	return snap, ok
}

// corpusFingerprint identifies a (model, corpus content) pair so cached
// embeddings are invalidated when either changes.
func corpusFingerprint(model string, entries []Entry) string {
	h := sha256.New()
	h.Write([]byte(model))
	for _, entry := range entries {
		h.Write([]byte{0})
		h.Write([]byte(entry.Question))
		h.Write([]byte{0})
		h.Write([]byte(entry.Answer))
		h.Write([]byte{0})
		h.Write([]byte(entry.Category))
	}
	return hex.EncodeToString(h.Sum(nil))
}
