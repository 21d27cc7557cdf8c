package retriever

import "codeberg.org/campusnavi/server/internal/storage"

// fuseScores combines a dense and a lexical candidate set into one list
// scored alpha*dense_norm + beta*lexical_norm. Each set is normalized
// independently before weighting because the two rankings live on
// unrelated scales: cosine similarity is bounded, ts_rank_cd is corpus-
// and query-dependent. A chunk present in only one set contributes zero
// from the other.
func fuseScores(dense, lexical []storage.ScoredChunk, alpha, beta float64) []RankedChunk {
	denseNorm := normalizeScores(dense)
	lexNorm := normalizeScores(lexical)

	chunks := make(map[string]storage.Chunk, len(dense)+len(lexical))
	fused := make(map[string]float64, len(dense)+len(lexical))

	for _, s := range dense {
		chunks[s.Chunk.ChunkID] = s.Chunk
		fused[s.Chunk.ChunkID] += alpha * denseNorm[s.Chunk.ChunkID]
	}

	for _, s := range lexical {
		if _, ok := chunks[s.Chunk.ChunkID]; !ok {
			chunks[s.Chunk.ChunkID] = s.Chunk
		}

		fused[s.Chunk.ChunkID] += beta * lexNorm[s.Chunk.ChunkID]
	}

	results := make([]RankedChunk, 0, len(fused))
	for id, score := range fused {
		results = append(results, RankedChunk{Chunk: chunks[id], Score: score})
	}

	return results
}

// normalizeScores min-max normalizes a candidate set onto [0,1]. Min-max
// is undefined below two members, so a lone candidate gets a saturating
// transform of its raw score instead; an all-equal set maps to 1.
func normalizeScores(results []storage.ScoredChunk) map[string]float64 {
	norm := make(map[string]float64, len(results))

	if len(results) == 0 {
		return norm
	}

	if len(results) == 1 {
		norm[results[0].Chunk.ChunkID] = saturate(results[0].Score)
		return norm
	}

	minScore, maxScore := results[0].Score, results[0].Score
	for _, r := range results[1:] {
		minScore = min(minScore, r.Score)
		maxScore = max(maxScore, r.Score)
	}

	if maxScore == minScore {
		for _, r := range results {
			norm[r.Chunk.ChunkID] = 1.0
		}

		return norm
	}

	for _, r := range results {
		norm[r.Chunk.ChunkID] = (r.Score - minScore) / (maxScore - minScore)
	}

	return norm
}

// monotonic map of [0, inf) onto [0, 1); negative scores clamp to zero
func saturate(score float64) float64 {
	if score <= 0 {
		return 0
	}

	return score / (1 + score)
}
