package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/campusnavi/server/internal/chunker"
	"codeberg.org/campusnavi/server/internal/errors"
	"codeberg.org/campusnavi/server/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	active        *storage.Document
	activeErr     error
	latestVersion int
	createErr     error

	createdDoc    *storage.Document
	createdChunks []storage.Chunk
	createCalls   int
}

func (s *mockStore) ActiveDocumentByURL(_ context.Context, _ string) (*storage.Document, error) {
	return s.active, s.activeErr
}

func (s *mockStore) LatestChunkVersion(_ context.Context, _ string) (int, error) {
	return s.latestVersion, nil
}

func (s *mockStore) CreateDocumentWithChunks(_ context.Context, doc *storage.Document, chunks []storage.Chunk) error {
	s.createCalls++

	if s.createErr != nil {
		return s.createErr
	}

	s.createdDoc = doc
	s.createdChunks = chunks

	return nil
}

type mockEmbedder struct {
	mu         sync.Mutex
	dim        int
	calls      int
	failures   int // fail this many leading calls
	failWith   error
	batchSizes []int
}

func (e *mockEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return vecs[0], nil
}

func (e *mockEmbedder) GenerateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls++
	e.batchSizes = append(e.batchSizes, len(texts))

	if e.failures > 0 {
		e.failures--
		return nil, e.failWith
	}

	vecs := make([][]float32, len(texts))
	for i := range vecs {
		vecs[i] = make([]float32, e.dim)
	}

	return vecs, nil
}

func (e *mockEmbedder) Model() string { return "test-embed" }

func (e *mockEmbedder) Dim() int { return 3 }

func testOptions() Options {
	return Options{
		Chunk:            chunker.Options{ChunkSizeTokens: 5, OverlapTokens: 1},
		EmbedBatchSize:   2,
		EmbedConcurrency: 1,
		MaxRetries:       2,
		RetryBaseDelay:   time.Millisecond,
	}
}

func pageText(words int) string {
	return strings.TrimSpace(strings.Repeat("word ", words))
}

func testSource() Source {
	return Source{
		URL:        "https://www.dendai.ac.jp/access/",
		Title:      "Access",
		SourceType: storage.SourceSitePage,
		Campus:     "senju",
	}
}

func TestIngest_URLRequired(t *testing.T) {
	writer := NewWriter(&mockStore{}, &mockEmbedder{dim: 3}, testOptions())

	_, err := writer.Ingest(context.Background(), pageText(20), nil, Source{})

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestIngest_TooShortRejected(t *testing.T) {
	opts := testOptions()
	opts.MinContentChars = 200

	writer := NewWriter(&mockStore{}, &mockEmbedder{dim: 3}, opts)

	_, err := writer.Ingest(context.Background(), "short page", nil, testSource())

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestIngest_NewDocument(t *testing.T) {
	store := &mockStore{}
	writer := NewWriter(store, &mockEmbedder{dim: 3}, testOptions())

	result, err := writer.Ingest(context.Background(), pageText(20), nil, testSource())

	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 5, result.ChunkCount)

	require.NotNil(t, store.createdDoc)
	assert.Equal(t, storage.StatusActive, store.createdDoc.Status)
	assert.Equal(t, "ja", store.createdDoc.Language, "language defaults to ja")
	assert.NotEmpty(t, store.createdDoc.ContentHash)

	require.Len(t, store.createdChunks, 5)

	for i, chunk := range store.createdChunks {
		assert.Equal(t, store.createdDoc.DocID, chunk.DocID)
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, 1, chunk.Version, "first ingest starts at version 1")
		assert.Equal(t, "senju", chunk.Campus)
		assert.Equal(t, "test-embed", chunk.EmbeddingModel)
		assert.Len(t, chunk.Embedding, 3)
	}
}

func TestIngest_UnchangedContentSkipped(t *testing.T) {
	text := pageText(20)

	store := &mockStore{
		active: &storage.Document{
			DocID:       "doc-1",
			ContentHash: contentHash(NormalizeText(text)),
		},
	}
	embedder := &mockEmbedder{dim: 3}
	writer := NewWriter(store, embedder, testOptions())

	result, err := writer.Ingest(context.Background(), text, nil, testSource())

	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, "doc-1", result.DocID)
	assert.Zero(t, store.createCalls, "unchanged content must not write")
	assert.Zero(t, embedder.calls, "unchanged content must not embed")
}

func TestIngest_ChangedContentSupersedes(t *testing.T) {
	store := &mockStore{
		active: &storage.Document{
			DocID:       "doc-1",
			ContentHash: "stale-hash",
		},
		latestVersion: 4,
	}
	writer := NewWriter(store, &mockEmbedder{dim: 3}, testOptions())

	result, err := writer.Ingest(context.Background(), pageText(20), nil, testSource())

	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.NotEqual(t, "doc-1", result.DocID, "replacement gets a fresh doc id")

	for _, chunk := range store.createdChunks {
		assert.Equal(t, 5, chunk.Version)
	}
}

func TestIngest_EmbedsInBatches(t *testing.T) {
	embedder := &mockEmbedder{dim: 3}
	writer := NewWriter(&mockStore{}, embedder, testOptions())

	// 20 tokens at window 5 stride 4: five chunks, batches of 2, 2, 1;
	// batch dispatch order is not guaranteed
	_, err := writer.Ingest(context.Background(), pageText(20), nil, testSource())

	require.NoError(t, err)
	assert.ElementsMatch(t, []int{2, 2, 1}, embedder.batchSizes)
}

func TestIngest_TransientEmbedFailureRetried(t *testing.T) {
	embedder := &mockEmbedder{
		dim:      3,
		failures: 1,
		failWith: errors.Transient(fmt.Errorf("503"), "embeddings unavailable"),
	}
	writer := NewWriter(&mockStore{}, embedder, testOptions())

	result, err := writer.Ingest(context.Background(), pageText(20), nil, testSource())

	require.NoError(t, err)
	assert.Equal(t, 5, result.ChunkCount)
	assert.Equal(t, 4, embedder.calls, "one failed attempt plus retry plus remaining batches")
}

func TestIngest_TransientFailuresExhaustRetries(t *testing.T) {
	embedder := &mockEmbedder{
		dim:      3,
		failures: 100,
		failWith: errors.Transient(fmt.Errorf("503"), "embeddings unavailable"),
	}

	opts := testOptions()
	opts.EmbedConcurrency = 1

	writer := NewWriter(&mockStore{}, embedder, opts)

	_, err := writer.Ingest(context.Background(), pageText(20), nil, testSource())

	require.Error(t, err)
	assert.True(t, errors.IsExternal(err))
}

func TestIngest_NonTransientEmbedFailureNotRetried(t *testing.T) {
	embedder := &mockEmbedder{
		dim:      3,
		failures: 100,
		failWith: errors.Validationf("empty texts"),
	}

	opts := testOptions()
	opts.Chunk = chunker.Options{ChunkSizeTokens: 50, OverlapTokens: 10}

	writer := NewWriter(&mockStore{}, embedder, opts)

	_, err := writer.Ingest(context.Background(), pageText(20), nil, testSource())

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, 1, embedder.calls, "validation failures must not be retried")
}

func TestIngest_DimensionMismatchIsIntegrityError(t *testing.T) {
	// embedder produces 4-wide vectors but reports dim 3
	embedder := &mockEmbedder{dim: 4}
	writer := NewWriter(&mockStore{}, embedder, testOptions())

	_, err := writer.Ingest(context.Background(), pageText(20), nil, testSource())

	require.Error(t, err)
	assert.True(t, errors.IsIntegrity(err))
}

func TestIngest_StoreFailurePropagates(t *testing.T) {
	store := &mockStore{createErr: fmt.Errorf("deadlock detected")}
	writer := NewWriter(store, &mockEmbedder{dim: 3}, testOptions())

	_, err := writer.Ingest(context.Background(), pageText(20), nil, testSource())

	require.Error(t, err)
}

func TestNormalizeText_Idempotent(t *testing.T) {
	raw := "Ｃａｍｐｕｓ\r\nGuide  \r\n\r\n\r\nAccess　information\r"

	once := NormalizeText(raw)
	twice := NormalizeText(once)

	assert.Equal(t, once, twice)
	assert.NotContains(t, once, "\r")
	assert.NotContains(t, once, "\n\n\n")
}

func TestNormalizeText_NFKC(t *testing.T) {
	// full-width latin folds to ASCII
	assert.Equal(t, "Campus 2026", NormalizeText("Ｃａｍｐｕｓ　２０２６"))
}

func TestContentHash_Stable(t *testing.T) {
	a := contentHash("some page text")
	b := contentHash("some page text")
	c := contentHash("other page text")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
