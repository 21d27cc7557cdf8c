package chunker

import (
	"sort"

	"codeberg.org/campusnavi/server/internal/errors"
	"codeberg.org/campusnavi/server/internal/tokenizer"
)

// Chunk splits one normalized document into overlapping token windows.
//
// The text is tokenized once with offsets preserved. Each window takes up
// to ChunkSizeTokens tokens; the next window starts ChunkSizeTokens -
// OverlapTokens tokens later, so consecutive windows share exactly
// OverlapTokens tokens. The heading stack active at a window's starting
// offset becomes that chunk's HeadingPath. A final remnant shorter than
// the overlap is still emitted; text shorter than one window yields
// exactly one chunk.
//
// Pure and deterministic for fixed inputs and options.
func Chunk(text string, outline []Heading, tok tokenizer.Tokenizer, opts Options) ([]Draft, error) {
	if opts.OverlapTokens < 0 || opts.ChunkSizeTokens <= opts.OverlapTokens {
		// each window must advance by size - overlap tokens, so this
		// configuration would never make progress
		return nil, errors.Validationf(
			"chunk size must exceed overlap: size=%d overlap=%d",
			opts.ChunkSizeTokens, opts.OverlapTokens,
		)
	}

	tokens := tok.Tokenize(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	markers := make([]Heading, len(outline))
	copy(markers, outline)
	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Offset < markers[j].Offset
	})

	stride := opts.ChunkSizeTokens - opts.OverlapTokens

	var (
		drafts []Draft
		stack  []Heading // open headings, outermost first
		next   int       // next unconsumed outline marker
	)

	for start := 0; start < len(tokens); start += stride {
		end := start + opts.ChunkSizeTokens
		if end > len(tokens) {
			end = len(tokens)
		}

		winStart := tokens[start].Start
		winEnd := tokens[end-1].End

		// advance the heading stack to this window's starting offset;
		// window starts only move forward, so markers are consumed once
		for next < len(markers) && markers[next].Offset <= winStart {
			h := markers[next]

			for len(stack) > 0 && stack[len(stack)-1].Level >= h.Level {
				stack = stack[:len(stack)-1]
			}

			stack = append(stack, h)
			next++
		}

		path := make([]string, len(stack))
		for i, h := range stack {
			path[i] = h.Text
		}

		drafts = append(drafts, Draft{
			Text:        text[winStart:winEnd],
			HeadingPath: path,
			Index:       len(drafts),
			TokenCount:  end - start,
			CharStart:   winStart,
			CharEnd:     winEnd,
		})

		if end == len(tokens) {
			break
		}
	}

	return drafts, nil
}
