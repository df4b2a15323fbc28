package contextengine

// Hybrid score weights and BM25 saturation constant, resolving spec.md §9's
// Open Question on weighting. These are stable across a build, as the
// cache format requires: changing them invalidates no on-disk state (the
// cache stores raw embeddings and BM25-independent previews, not combined
// scores) but does change ranking, so they are documented here as the
// single source of truth.
const (
	vectorWeight = 0.6
	bm25Weight   = 0.4
	bm25NormK    = 2.0
)

// normalizeBM25 saturates an unbounded BM25 score into (0,1) so it doesn't
// dominate the bounded cosine term in the hybrid sum.
func normalizeBM25(score float64) float64 {
	if score <= 0 {
		return 0
	}
	return score / (score + bm25NormK)
}

// combineScores implements spec.md §4.2's hybrid score: a weighted sum of
// vector and lexical relevance. When hasVector is false (embedding backend
// unavailable during this query), the result is lexical-only, per the
// Failure model.
func combineScores(vectorScore float64, hasVector bool, bm25Score float64) float64 {
	normBM25 := normalizeBM25(bm25Score)
	if !hasVector {
		return normBM25
	}
	return vectorWeight*vectorScore + bm25Weight*normBM25
}
