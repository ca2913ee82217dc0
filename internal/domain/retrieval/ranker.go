package retrieval

import "math"

// Rank scores the query vector against every corpus entry and decides between
// a match and the no-match sentinel.
//
// Entries in the active category receive an additive boost so the session
// stays on topic among near-ties, but the acceptance threshold is always
// checked against the unboosted similarity of the winner: the boost can change
// which entry wins, never lift a weak match over the bar. An active category
// that does not exist in the corpus is ignored.
func Rank(queryVec []float32, index *Index, activeCategory string, boost, threshold float64, noMatch Sentinel) Answer {
	sims := index.Similarities(queryVec)

	applyBoost := activeCategory != "" && index.HasCategory(activeCategory)
	best := -1
	bestScore := math.Inf(-1)
	for i, sim := range sims {
		score := sim
		if applyBoost && index.Entry(i).Category == activeCategory {
			score += boost
		}
		// strict comparison keeps the argmax stable: the earliest entry
		// wins ties
		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	realSim := sims[best]
	if realSim >= threshold {
		entry := index.Entry(best)
		return Answer{
			Question:   entry.Question,
			Answer:     entry.Answer,
			Category:   entry.Category,
			Similarity: realSim,
			Found:      true,
		}
	}
	// report the rejected best score anyway, it is useful for threshold tuning
	return noMatch.answer(realSim)
}
