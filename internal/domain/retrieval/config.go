package retrieval

// Config holds runtime knobs for the retrieval service.
type Config struct {
	CorpusPath          string
	EmbeddingModel      string
	SimilarityThreshold float64
	BoostFactor         float64
	MinQueryTokens      int
	TooShort            Sentinel
	NoMatch             Sentinel
	Gratitude           Sentinel
	GratitudePhrases    []string
}
