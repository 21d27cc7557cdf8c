package retriever

import (
	"context"
	"sort"
	"strings"
	"sync"

	"codeberg.org/campusnavi/server/internal/errors"
	"codeberg.org/campusnavi/server/internal/logger"
	"codeberg.org/campusnavi/server/internal/storage"
)

// hybrid pulls TopK * candidateMultiplier candidates from each ranking so
// fusion has a population to normalize over
const defaultCandidateMultiplier = 5

func New(store SearchStore, embedder QueryEmbedder) *Client {
	return &Client{
		store:               store,
		embedder:            embedder,
		candidateMultiplier: defaultCandidateMultiplier,
	}
}

// Search ranks chunks against a query under the requested strategy.
// Retrieval is read-only and never retried; a query-embedding or store
// failure aborts the call with no partial results.
func (c *Client) Search(ctx context.Context, req Request) ([]RankedChunk, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	switch req.Strategy {
	case StrategyDense:
		if !req.Filters.IsZero() {
			// filters are accepted but ignored: dense ranks the whole corpus
			logger.Debug("filters ignored for dense strategy", "query", req.Query)
		}

		return c.dense(ctx, req.Query, nil, req.TopK)

	case StrategyPrefilterDense:
		return c.dense(ctx, req.Query, req.Filters, req.TopK)

	default:
		return c.hybrid(ctx, req)
	}
}

func validate(req Request) error {
	if req.TopK <= 0 {
		return errors.Validationf("top_k must be a positive integer, got %d", req.TopK)
	}

	if strings.TrimSpace(req.Query) == "" {
		return errors.Validationf("query must not be empty")
	}

	switch req.Strategy {
	case StrategyDense, StrategyPrefilterDense:
	case StrategyHybrid:
		if req.Alpha < 0 || req.Alpha > 1 {
			return errors.Validationf("alpha must lie in [0,1], got %g", req.Alpha)
		}

		if req.Beta < 0 || req.Beta > 1 {
			return errors.Validationf("beta must lie in [0,1], got %g", req.Beta)
		}
	default:
		return errors.Validationf("unknown strategy %q", req.Strategy)
	}

	return nil
}

func (c *Client) dense(ctx context.Context, query string, filters *storage.Filters, topK int) ([]RankedChunk, error) {
	vector, err := c.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	scored, err := c.store.DenseRank(ctx, vector, filters, topK)
	if err != nil {
		return nil, errors.External(err, "dense ranking failed")
	}

	results := make([]RankedChunk, len(scored))
	for i, s := range scored {
		results[i] = RankedChunk{Chunk: s.Chunk, Score: s.Score}
	}

	sortRanked(results)

	return results, nil
}

func (c *Client) hybrid(ctx context.Context, req Request) ([]RankedChunk, error) {
	vector, err := c.embedQuery(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	candidateSize := req.TopK * c.candidateMultiplier

	// both rankings hit the store independently; run them in parallel
	var (
		denseRes, lexRes []storage.ScoredChunk
		denseErr, lexErr error
		wg               sync.WaitGroup
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		denseRes, denseErr = c.store.DenseRank(ctx, vector, req.Filters, candidateSize)
	}()

	go func() {
		defer wg.Done()
		lexRes, lexErr = c.store.LexicalRank(ctx, req.Query, req.Filters, candidateSize)
	}()

	wg.Wait()

	if denseErr != nil {
		return nil, errors.External(denseErr, "dense ranking failed")
	}

	if lexErr != nil {
		return nil, errors.External(lexErr, "lexical ranking failed")
	}

	fused := fuseScores(denseRes, lexRes, req.Alpha, req.Beta)
	sortRanked(fused)

	if len(fused) > req.TopK {
		fused = fused[:req.TopK]
	}

	return fused, nil
}

func (c *Client) embedQuery(ctx context.Context, query string) ([]float32, error) {
	vector, err := c.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, errors.External(err, "failed to generate query embedding")
	}

	return vector, nil
}

// equal scores break ties by ascending chunk index, then chunk id, so
// repeated identical queries return identical orderings
func sortRanked(results []RankedChunk) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}

		if results[i].Chunk.ChunkIndex != results[j].Chunk.ChunkIndex {
			return results[i].Chunk.ChunkIndex < results[j].Chunk.ChunkIndex
		}

		return results[i].Chunk.ChunkID < results[j].Chunk.ChunkID
	})
}
