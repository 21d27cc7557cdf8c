package chunker

// Heading is one outline marker: a heading of the given level starting at
// the given byte offset into the normalized text.
type Heading struct {
	Level  int
	Text   string
	Offset int
}

// Draft is one retrievable window of a document, not yet embedded or
// persisted.
type Draft struct {
	Text        string
	HeadingPath []string // enclosing headings, outermost first
	Index       int      // zero-based emission order
	TokenCount  int
	CharStart   int
	CharEnd     int
}

// Options control window sizing.
type Options struct {
	ChunkSizeTokens int
	OverlapTokens   int
}

func DefaultOptions() Options {
	return Options{
		ChunkSizeTokens: 400,
		OverlapTokens:   80,
	}
}
