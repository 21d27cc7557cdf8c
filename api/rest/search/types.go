package search

// Request represents the request body for a search call
type Request struct {
	Query    string   `json:"query" binding:"required"`
	Strategy string   `json:"strategy"`
	Filters  *Filters `json:"filters"`
	TopK     int      `json:"top_k"`
	Alpha    *float64 `json:"alpha"`
	Beta     *float64 `json:"beta"`
}

// Filters mirrors the structured prefilter fields
type Filters struct {
	Campus     string   `json:"campus"`
	Building   string   `json:"building"`
	Department string   `json:"department"`
	Lab        string   `json:"lab"`
	Professor  string   `json:"professor"`
	Tags       []string `json:"tags"`
	ValidOn    string   `json:"valid_on"` // YYYY-MM-DD
}

// Result is one ranked hit
type Result struct {
	ChunkID   string   `json:"chunk_id"`
	Text      string   `json:"text"`
	Score     float64  `json:"score"`
	SourceURL string   `json:"source_url"`
	Metadata  Metadata `json:"metadata"`
}

// Metadata carries the chunk's structured fields
type Metadata struct {
	Campus      string   `json:"campus,omitempty"`
	Building    string   `json:"building,omitempty"`
	Department  string   `json:"department,omitempty"`
	Lab         string   `json:"lab,omitempty"`
	Professor   []string `json:"professor,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	HeadingPath []string `json:"heading_path,omitempty"`
}

// Response represents the response for a search call
type Response struct {
	Strategy string   `json:"strategy"`
	Count    int      `json:"count"`
	Results  []Result `json:"results"`
}
