package ingest

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"codeberg.org/campusnavi/server/internal/chunker"
	"codeberg.org/campusnavi/server/internal/errors"
	"codeberg.org/campusnavi/server/internal/llm"
	"codeberg.org/campusnavi/server/internal/logger"
	"codeberg.org/campusnavi/server/internal/storage"
	"codeberg.org/campusnavi/server/internal/tokenizer"
	"github.com/google/uuid"
)

// Writer drives chunker, embedder and store to materialize one document
// and its chunks, idempotently. Safe for concurrent use; ingestion of the
// same source URL is serialized internally.
type Writer struct {
	store    Store
	embedder llm.Embedder
	tok      tokenizer.Tokenizer
	opts     Options

	mu       sync.Mutex
	urlLocks map[string]*sync.Mutex
}

func NewWriter(store Store, embedder llm.Embedder, opts Options) *Writer {
	if opts.EmbedBatchSize <= 0 {
		opts.EmbedBatchSize = DefaultOptions().EmbedBatchSize
	}

	if opts.EmbedConcurrency <= 0 {
		opts.EmbedConcurrency = DefaultOptions().EmbedConcurrency
	}

	return &Writer{
		store:    store,
		embedder: embedder,
		tok:      tokenizer.Simple{},
		opts:     opts,
		urlLocks: make(map[string]*sync.Mutex),
	}
}

// Ingest materializes one scraped page. Unchanged content (same source URL
// and content hash as the active document) is a no-op reported through
// Result.Skipped; changed content supersedes the previous document and
// writes a fresh chunk set under the next version.
//
// Outline offsets must refer to the normalized text; NormalizeText is
// idempotent, so pre-normalized input passes through unchanged.
func (w *Writer) Ingest(ctx context.Context, text string, outline []chunker.Heading, src Source) (*Result, error) {
	if src.URL == "" {
		return nil, errors.Validationf("source URL is required")
	}

	normalized := NormalizeText(text)

	if n := utf8.RuneCountInString(normalized); n < w.opts.MinContentChars {
		return nil, errors.Validationf(
			"page %s too short after normalization: %d chars, need %d",
			src.URL, n, w.opts.MinContentChars,
		)
	}

	hash := contentHash(normalized)

	// concurrent ingestion of the same URL would race the supersession
	// update, so one writer per URL at a time
	lock := w.urlLock(src.URL)
	lock.Lock()
	defer lock.Unlock()

	existing, err := w.store.ActiveDocumentByURL(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	if existing != nil && existing.ContentHash == hash {
		logger.Debug("content unchanged, skipping", "url", src.URL, "doc_id", existing.DocID)
		return &Result{DocID: existing.DocID, Skipped: true}, nil
	}

	drafts, err := chunker.Chunk(normalized, outline, w.tok, w.opts.Chunk)
	if err != nil {
		return nil, err
	}

	if len(drafts) == 0 {
		return nil, errors.Validationf("page %s produced no chunks", src.URL)
	}

	vectors, err := w.embedDrafts(ctx, drafts)
	if err != nil {
		return nil, err
	}

	for i, vec := range vectors {
		if len(vec) != w.embedder.Dim() {
			return nil, errors.Integrityf(
				"chunk %d: embedding dimension %d does not match model %s (%d)",
				i, len(vec), w.embedder.Model(), w.embedder.Dim(),
			)
		}
	}

	version, err := w.store.LatestChunkVersion(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	version++

	now := time.Now().UTC()

	language := src.Language
	if language == "" {
		language = "ja"
	}

	doc := &storage.Document{
		DocID:       uuid.NewString(),
		SourceURL:   src.URL,
		SourceType:  src.SourceType,
		Title:       src.Title,
		Language:    language,
		FetchedAt:   now,
		UpdatedAt:   now,
		ContentHash: hash,
		Status:      storage.StatusActive,
		Meta:        src.Meta,
	}

	chunks := make([]storage.Chunk, len(drafts))
	for i, draft := range drafts {
		chunks[i] = storage.Chunk{
			ChunkID:        uuid.NewString(),
			DocID:          doc.DocID,
			ChunkIndex:     draft.Index,
			Text:           draft.Text,
			TokenCount:     draft.TokenCount,
			HeadingPath:    draft.HeadingPath,
			Tags:           src.Tags,
			Campus:         src.Campus,
			Building:       src.Building,
			Department:     src.Department,
			Lab:            src.Lab,
			Professor:      src.Professors,
			ValidityStart:  src.ValidityStart,
			ValidityEnd:    src.ValidityEnd,
			SourceURL:      src.URL,
			Embedding:      vectors[i],
			EmbeddingModel: w.embedder.Model(),
			EmbeddingDim:   w.embedder.Dim(),
			Version:        version,
		}
	}

	if err := w.store.CreateDocumentWithChunks(ctx, doc, chunks); err != nil {
		return nil, err
	}

	logger.Info("document ingested",
		"url", src.URL,
		"doc_id", doc.DocID,
		"chunks", len(chunks),
		"version", version,
		"superseded", existing != nil,
	)

	return &Result{DocID: doc.DocID, ChunkCount: len(chunks)}, nil
}

// embedDrafts requests embeddings in fixed-size batches dispatched through
// a bounded worker pool, preserving draft order in the returned vectors.
func (w *Writer) embedDrafts(ctx context.Context, drafts []chunker.Draft) ([][]float32, error) {
	texts := make([]string, len(drafts))
	for i, d := range drafts {
		texts[i] = d.Text
	}

	type batch struct {
		start int
		texts []string
	}

	var batches []batch
	for start := 0; start < len(texts); start += w.opts.EmbedBatchSize {
		end := min(start+w.opts.EmbedBatchSize, len(texts))
		batches = append(batches, batch{start: start, texts: texts[start:end]})
	}

	vectors := make([][]float32, len(texts))
	errs := make([]error, len(batches))

	sem := make(chan struct{}, w.opts.EmbedConcurrency)
	var wg sync.WaitGroup

	for i, b := range batches {
		wg.Add(1)

		go func(i int, b batch) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			vecs, err := w.embedBatch(ctx, b.texts)
			if err != nil {
				errs[i] = err
				return
			}

			copy(vectors[b.start:], vecs)
		}(i, b)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return vectors, nil
}

// embedBatch retries transient failures with exponential backoff;
// validation failures surface immediately
func (w *Writer) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	delay := w.opts.RetryBaseDelay

	var lastErr error

	for attempt := 0; attempt <= w.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, errors.External(ctx.Err(), "embedding cancelled")
			}

			delay *= 2
		}

		vecs, err := w.embedder.GenerateEmbeddings(ctx, texts)
		if err == nil {
			return vecs, nil
		}

		if !errors.IsTransient(err) {
			return nil, err
		}

		lastErr = err
		logger.Warn("embedding batch failed, will retry",
			"attempt", attempt+1,
			"batch_size", len(texts),
			"error", err,
		)
	}

	return nil, errors.External(lastErr, "embedding retries exhausted")
}

func (w *Writer) urlLock(url string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()

	lock, ok := w.urlLocks[url]
	if !ok {
		lock = &sync.Mutex{}
		w.urlLocks[url] = lock
	}

	return lock
}
