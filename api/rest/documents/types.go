package documents

import "time"

// ChunkView is the audit view of one stored chunk, embedding omitted
type ChunkView struct {
	ChunkID     string     `json:"chunk_id"`
	ChunkIndex  int        `json:"chunk_index"`
	Text        string     `json:"text"`
	TokenCount  int        `json:"token_count"`
	HeadingPath []string   `json:"heading_path,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Campus      string     `json:"campus,omitempty"`
	Building    string     `json:"building,omitempty"`
	Department  string     `json:"department,omitempty"`
	Lab         string     `json:"lab,omitempty"`
	Professor   []string   `json:"professor,omitempty"`
	SourceURL   string     `json:"source_url"`
	Model       string     `json:"embedding_model"`
	Dim         int        `json:"embedding_dim"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ChunksResponse lists a document's chunk set
type ChunksResponse struct {
	DocID  string      `json:"doc_id"`
	Count  int         `json:"count"`
	Chunks []ChunkView `json:"chunks"`
}
