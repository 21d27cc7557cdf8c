package retriever

import (
	"context"

	"codeberg.org/campusnavi/server/internal/storage"
)

// Strategy selects how chunks are ranked against a query.
type Strategy string

const (
	// vector similarity over the whole corpus
	StrategyDense Strategy = "dense"

	// vector similarity over a metadata-prefiltered candidate set
	StrategyPrefilterDense Strategy = "prefilter_dense"

	// weighted fusion of vector similarity and lexical relevance
	StrategyHybrid Strategy = "hybrid"
)

// Request is one search call.
type Request struct {
	Query    string
	Strategy Strategy
	Filters  *storage.Filters
	TopK     int

	// hybrid weights; each must lie in [0,1], they need not sum to 1
	Alpha float64 // dense weight
	Beta  float64 // lexical weight
}

// RankedChunk is one search hit with the score used to rank it: raw cosine
// similarity for dense and prefilter_dense, fused [0,1] score for hybrid.
type RankedChunk struct {
	Chunk storage.Chunk
	Score float64
}

// SearchStore is the slice of the storage client the engine needs.
type SearchStore interface {
	DenseRank(ctx context.Context, vector []float32, filters *storage.Filters, limit int) ([]storage.ScoredChunk, error)
	LexicalRank(ctx context.Context, query string, filters *storage.Filters, limit int) ([]storage.ScoredChunk, error)
}

// QueryEmbedder is the slice of the embedding provider the engine needs.
type QueryEmbedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Client is the hybrid retrieval engine.
type Client struct {
	store               SearchStore
	embedder            QueryEmbedder
	candidateMultiplier int
}
