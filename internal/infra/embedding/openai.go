package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/yanqian/ai-faqbot/internal/domain/retrieval"
	apperrors "github.com/yanqian/ai-faqbot/pkg/errors"
)

// maxBatchTokens stays well below the provider's per-request cap.
const maxBatchTokens = 200_000

// OpenAIEmbedder implements retrieval.Embedder on an OpenAI-compatible API.
// Every returned vector is re-normalized locally rather than trusting the
// provider to emit unit vectors.
type OpenAIEmbedder struct {
	client  *Client
	model   string
	encoder *tiktoken.Tiktoken
	logger  *slog.Logger
}

// NewOpenAIEmbedder constructs the embedder. Token counting degrades to a
// heuristic when the tiktoken encoding cannot be loaded.
func NewOpenAIEmbedder(client *Client, model string, logger *slog.Logger) *OpenAIEmbedder {
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn("tiktoken encoding unavailable, using heuristic token counts", "error", err)
		encoder = nil
	}
	return &OpenAIEmbedder{
		client:  client,
		model:   strings.TrimSpace(model),
		encoder: encoder,
		logger:  logger.With("component", "embedding.openai"),
	}
}

// EmbedBatch requests embeddings for the given texts, splitting into batches
// bounded by the token budget. Output order matches input order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var (
		out         [][]float32
		batch       []string
		batchTokens int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		resp, err := e.client.CreateEmbedding(ctx, EmbeddingRequest{Model: e.model, Input: batch})
		if err != nil {
			return apperrors.Wrap(apperrors.CodeEmbeddingError, "embedding request failed", err)
		}
		if len(resp.Data) != len(batch) {
			return apperrors.Wrap(apperrors.CodeEmbeddingError,
				fmt.Sprintf("embedding count mismatch: sent %d, got %d", len(batch), len(resp.Data)), nil)
		}
		for _, item := range resp.Data {
			out = append(out, normalize(item.Embedding))
		}
		batch = batch[:0]
		batchTokens = 0
		return nil
	}

	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, apperrors.Wrap(apperrors.CodeEmbeddingError, "cannot embed empty text", nil)
		}
		tokens := e.countTokens(text)
		if tokens > maxBatchTokens {
			return nil, apperrors.Wrap(apperrors.CodeEmbeddingError,
				fmt.Sprintf("text too large for embedding request: tokens=%d", tokens), nil)
		}
		if batchTokens+tokens > maxBatchTokens && len(batch) > 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		batch = append(batch, text)
		batchTokens += tokens
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// EmbedOne embeds a single query.
func (e *OpenAIEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeEmbeddingError, "embedding response empty", nil)
	}
	return vectors[0], nil
}

func (e *OpenAIEmbedder) countTokens(text string) int {
	if e.encoder != nil {
		return len(e.encoder.Encode(text, nil, nil))
	}
	// over-estimate: ~1 token per 2 runes, never below word count
	runes := utf8.RuneCountInString(text)
	words := len(strings.Fields(text))
	byRunes := (runes + 1) / 2
	if byRunes < words {
		return words
	}
	return byRunes
}

var _ retrieval.Embedder = (*OpenAIEmbedder)(nil)
