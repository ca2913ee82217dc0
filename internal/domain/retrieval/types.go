package retrieval

// Entry is one row of the FAQ corpus. Entries are immutable after load and
// index-aligned with the embedding matrix.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// Answer is the outcome of ranking a query against the corpus. Sentinel
// variants (too short, no match, gratitude) reuse the same shape with
// Found=false and fixed texts.
type Answer struct {
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Category   string  `json:"category"`
	Similarity float64 `json:"similarity"`
	Found      bool    `json:"found"`
}

// Sentinel is the fixed text returned in place of a real match.
type Sentinel struct {
	Question string
	Answer   string
	Category string
}

func (s Sentinel) answer(similarity float64) Answer {
	return Answer{
		Question:   s.Question,
		Answer:     s.Answer,
		Category:   s.Category,
		Similarity: similarity,
	}
}
