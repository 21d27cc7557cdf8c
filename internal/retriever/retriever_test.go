package retriever

import (
	"context"
	"fmt"
	"testing"

	"codeberg.org/campusnavi/server/internal/errors"
	"codeberg.org/campusnavi/server/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	dense    []storage.ScoredChunk
	lexical  []storage.ScoredChunk
	denseErr error
	lexErr   error

	denseFilters *storage.Filters
	denseLimit   int
	lexFilters   *storage.Filters
	lexLimit     int
}

func (s *fakeStore) DenseRank(_ context.Context, _ []float32, filters *storage.Filters, limit int) ([]storage.ScoredChunk, error) {
	s.denseFilters = filters
	s.denseLimit = limit

	return s.dense, s.denseErr
}

func (s *fakeStore) LexicalRank(_ context.Context, _ string, filters *storage.Filters, limit int) ([]storage.ScoredChunk, error) {
	s.lexFilters = filters
	s.lexLimit = limit

	return s.lexical, s.lexErr
}

type fakeEmbedder struct {
	err error
}

func (e *fakeEmbedder) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}

	return []float32{0.1, 0.2, 0.3}, nil
}

func scored(id string, index int, score float64) storage.ScoredChunk {
	return storage.ScoredChunk{
		Chunk: storage.Chunk{ChunkID: id, ChunkIndex: index},
		Score: score,
	}
}

func ids(results []RankedChunk) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Chunk.ChunkID
	}

	return out
}

func TestSearch_TopKMustBePositive(t *testing.T) {
	engine := New(&fakeStore{}, &fakeEmbedder{})

	_, err := engine.Search(context.Background(), Request{Query: "library hours", Strategy: StrategyDense, TopK: 0})

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	engine := New(&fakeStore{}, &fakeEmbedder{})

	_, err := engine.Search(context.Background(), Request{Query: "   ", Strategy: StrategyDense, TopK: 5})

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestSearch_UnknownStrategyRejected(t *testing.T) {
	engine := New(&fakeStore{}, &fakeEmbedder{})

	_, err := engine.Search(context.Background(), Request{Query: "cafeteria", Strategy: "sparse", TopK: 5})

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestSearch_HybridWeightsValidated(t *testing.T) {
	engine := New(&fakeStore{}, &fakeEmbedder{})

	for _, req := range []Request{
		{Query: "q", Strategy: StrategyHybrid, TopK: 5, Alpha: 1.5, Beta: 0.4},
		{Query: "q", Strategy: StrategyHybrid, TopK: 5, Alpha: 0.6, Beta: -0.1},
	} {
		_, err := engine.Search(context.Background(), req)

		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	}
}

func TestSearch_DenseIgnoresFilters(t *testing.T) {
	store := &fakeStore{dense: []storage.ScoredChunk{scored("a", 0, 0.9)}}
	engine := New(store, &fakeEmbedder{})

	results, err := engine.Search(context.Background(), Request{
		Query:    "access map",
		Strategy: StrategyDense,
		TopK:     5,
		Filters:  &storage.Filters{Campus: "senju"},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, store.denseFilters, "dense ranking must hit the whole corpus")
	assert.Equal(t, 5, store.denseLimit)
}

func TestSearch_PrefilterPassesFilters(t *testing.T) {
	store := &fakeStore{dense: []storage.ScoredChunk{scored("a", 0, 0.9)}}
	engine := New(store, &fakeEmbedder{})

	filters := &storage.Filters{Campus: "senju", Department: "engineering"}

	_, err := engine.Search(context.Background(), Request{
		Query:    "lab intro",
		Strategy: StrategyPrefilterDense,
		TopK:     3,
		Filters:  filters,
	})

	require.NoError(t, err)
	assert.Equal(t, filters, store.denseFilters)
}

func TestSearch_UnsatisfiableFilterReturnsEmpty(t *testing.T) {
	engine := New(&fakeStore{}, &fakeEmbedder{})

	results, err := engine.Search(context.Background(), Request{
		Query:    "anything",
		Strategy: StrategyPrefilterDense,
		TopK:     10,
		Filters:  &storage.Filters{Campus: "atlantis"},
	})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_EmbedFailureIsExternal(t *testing.T) {
	engine := New(&fakeStore{}, &fakeEmbedder{err: fmt.Errorf("connection refused")})

	_, err := engine.Search(context.Background(), Request{Query: "q", Strategy: StrategyDense, TopK: 5})

	require.Error(t, err)
	assert.True(t, errors.IsExternal(err))
}

func TestSearch_StoreFailureIsExternal(t *testing.T) {
	store := &fakeStore{denseErr: fmt.Errorf("connection reset")}
	engine := New(store, &fakeEmbedder{})

	_, err := engine.Search(context.Background(), Request{Query: "q", Strategy: StrategyDense, TopK: 5})

	require.Error(t, err)
	assert.True(t, errors.IsExternal(err))
}

func TestSearch_HybridLexicalFailureIsExternal(t *testing.T) {
	store := &fakeStore{
		dense:  []storage.ScoredChunk{scored("a", 0, 0.9)},
		lexErr: fmt.Errorf("bad tsquery"),
	}
	engine := New(store, &fakeEmbedder{})

	_, err := engine.Search(context.Background(), Request{
		Query: "q", Strategy: StrategyHybrid, TopK: 5, Alpha: 0.6, Beta: 0.4,
	})

	require.Error(t, err)
	assert.True(t, errors.IsExternal(err))
}

func TestSearch_HybridFusesBothRankings(t *testing.T) {
	store := &fakeStore{
		dense: []storage.ScoredChunk{
			scored("a", 0, 0.9),
			scored("b", 1, 0.5),
			scored("c", 2, 0.1),
		},
		lexical: []storage.ScoredChunk{
			scored("b", 1, 10.0),
			scored("c", 2, 2.0),
		},
	}
	engine := New(store, &fakeEmbedder{})

	results, err := engine.Search(context.Background(), Request{
		Query: "exam schedule", Strategy: StrategyHybrid, TopK: 3, Alpha: 0.6, Beta: 0.4,
	})

	require.NoError(t, err)
	require.Len(t, results, 3)

	// a: 0.6*1.0, b: 0.6*0.5 + 0.4*1.0, c: 0
	assert.Equal(t, []string{"b", "a", "c"}, ids(results))
	assert.InDelta(t, 0.7, results[0].Score, 1e-9)
	assert.InDelta(t, 0.6, results[1].Score, 1e-9)
	assert.InDelta(t, 0.0, results[2].Score, 1e-9)
}

func TestSearch_HybridPureDenseWeightsKeepDenseOrder(t *testing.T) {
	store := &fakeStore{
		dense: []storage.ScoredChunk{
			scored("a", 0, 0.9),
			scored("b", 1, 0.6),
			scored("c", 2, 0.2),
		},
		lexical: []storage.ScoredChunk{
			scored("c", 2, 50.0),
			scored("b", 1, 1.0),
		},
	}
	engine := New(store, &fakeEmbedder{})

	results, err := engine.Search(context.Background(), Request{
		Query: "q", Strategy: StrategyHybrid, TopK: 3, Alpha: 1, Beta: 0,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(results))
}

func TestSearch_HybridExpandsCandidateSet(t *testing.T) {
	store := &fakeStore{}
	engine := New(store, &fakeEmbedder{})

	_, err := engine.Search(context.Background(), Request{
		Query: "q", Strategy: StrategyHybrid, TopK: 4, Alpha: 0.6, Beta: 0.4,
	})

	require.NoError(t, err)
	assert.Equal(t, 20, store.denseLimit)
	assert.Equal(t, 20, store.lexLimit)
}

func TestSearch_HybridTruncatesToTopK(t *testing.T) {
	store := &fakeStore{
		dense: []storage.ScoredChunk{
			scored("a", 0, 0.9),
			scored("b", 1, 0.8),
			scored("c", 2, 0.7),
			scored("d", 3, 0.6),
		},
	}
	engine := New(store, &fakeEmbedder{})

	results, err := engine.Search(context.Background(), Request{
		Query: "q", Strategy: StrategyHybrid, TopK: 2, Alpha: 0.6, Beta: 0.4,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(results))
}

func TestSearch_EqualScoresBreakTiesDeterministically(t *testing.T) {
	store := &fakeStore{
		dense: []storage.ScoredChunk{
			scored("z", 4, 0.5),
			scored("m", 2, 0.5),
			scored("a", 2, 0.5),
		},
	}
	engine := New(store, &fakeEmbedder{})

	for n := 0; n < 5; n++ {
		results, err := engine.Search(context.Background(), Request{
			Query: "q", Strategy: StrategyDense, TopK: 3,
		})

		require.NoError(t, err)

		// index ascending, then id ascending
		assert.Equal(t, []string{"a", "m", "z"}, ids(results))
	}
}
