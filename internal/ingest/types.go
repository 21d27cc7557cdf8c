package ingest

import (
	"context"
	"time"

	"codeberg.org/campusnavi/server/internal/chunker"
	"codeberg.org/campusnavi/server/internal/storage"
)

// Source carries a scraped page's identity and structured metadata. The
// structured fields are denormalized onto every chunk so prefiltered
// retrieval never needs the document row.
type Source struct {
	URL           string
	Title         string
	SourceType    storage.SourceType
	Language      string
	Tags          []string
	Campus        string
	Building      string
	Department    string
	Lab           string
	Professors    []string
	ValidityStart *time.Time
	ValidityEnd   *time.Time
	Meta          map[string]any
}

// Result reports one document's ingestion outcome. Skipped means the
// active document already carries this exact content and nothing was
// written.
type Result struct {
	DocID      string
	ChunkCount int
	Skipped    bool
}

// Store is the slice of the storage client the writer needs.
type Store interface {
	ActiveDocumentByURL(ctx context.Context, sourceURL string) (*storage.Document, error)
	LatestChunkVersion(ctx context.Context, sourceURL string) (int, error)
	CreateDocumentWithChunks(ctx context.Context, doc *storage.Document, chunks []storage.Chunk) error
}

// Options tune chunking, embedding throughput and retry behavior.
type Options struct {
	Chunk chunker.Options

	// texts per embedding request
	EmbedBatchSize int

	// concurrent in-flight embedding requests per document
	EmbedConcurrency int

	// retries per failed batch, transient failures only
	MaxRetries     int
	RetryBaseDelay time.Duration

	// pages normalizing below this many characters are rejected
	MinContentChars int
}

func DefaultOptions() Options {
	return Options{
		Chunk:            chunker.DefaultOptions(),
		EmbedBatchSize:   32,
		EmbedConcurrency: 4,
		MaxRetries:       3,
		RetryBaseDelay:   500 * time.Millisecond,
		MinContentChars:  200,
	}
}
