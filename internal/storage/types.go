package storage

import "time"

// SourceType classifies where a document was scraped from.
type SourceType string

const (
	SourceSitePage SourceType = "site_page"
	SourceLabPage  SourceType = "lab_page"
	SourcePDF      SourceType = "pdf"
	SourceNews     SourceType = "news"
)

// DocumentStatus is the document lifecycle tag. Transitions happen only in
// the ingestion writer: a re-ingested URL with changed content supersedes
// the previous active row.
type DocumentStatus string

const (
	StatusActive     DocumentStatus = "active"
	StatusSuperseded DocumentStatus = "superseded"
	StatusError      DocumentStatus = "error"
)

// Document is one source page.
type Document struct {
	DocID       string
	SourceURL   string
	SourceType  SourceType
	Title       string
	Language    string
	FetchedAt   time.Time
	UpdatedAt   time.Time
	ContentHash string
	Status      DocumentStatus
	Meta        map[string]any
}

// Chunk is one retrievable passage. Rows are append-only: a re-chunking or
// a new embedding model produces new rows under a new version.
type Chunk struct {
	ChunkID        string
	DocID          string
	ChunkIndex     int
	Text           string
	TokenCount     int
	HeadingPath    []string
	Tags           []string
	Campus         string
	Building       string
	Department     string
	Lab            string
	Professor      []string
	ValidityStart  *time.Time
	ValidityEnd    *time.Time
	SourceURL      string
	Embedding      []float32
	EmbeddingModel string
	EmbeddingDim   int
	Version        int
	CreatedAt      time.Time
}

// ScoredChunk pairs a chunk with the store-side ranking score: cosine
// similarity for dense ranking, ts_rank_cd for lexical ranking.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}
