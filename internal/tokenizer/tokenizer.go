package tokenizer

import (
	"unicode"
	"unicode/utf8"
)

// Token is one unit of the token stream with its byte offsets into the
// source text.
type Token struct {
	Text  string
	Start int // byte offset, inclusive
	End   int // byte offset, exclusive
}

// Tokenizer turns text into an ordered token stream. Implementations must
// be deterministic: identical input yields identical output. The stream is
// used only for counting and windowing, never for semantics.
type Tokenizer interface {
	Tokenize(text string) []Token
}

// Simple is the built-in tokenizer: runs of Latin letters and digits form
// one token, every other non-space rune stands alone. One-rune tokens for
// CJK text track embedding-model token counts closely enough for windowing
// over mixed Japanese/Latin campus pages.
type Simple struct{}

func (Simple) Tokenize(text string) []Token {
	var tokens []Token

	runStart := -1

	flush := func(end int) {
		if runStart >= 0 {
			tokens = append(tokens, Token{Text: text[runStart:end], Start: runStart, End: end})
			runStart = -1
		}
	}

	for i, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush(i)
		case isRunRune(r):
			if runStart < 0 {
				runStart = i
			}
		default:
			// CJK, kana, punctuation: one token per rune
			flush(i)

			w := utf8.RuneLen(r)
			tokens = append(tokens, Token{Text: text[i : i+w], Start: i, End: i + w})
		}
	}

	flush(len(text))

	return tokens
}

func isRunRune(r rune) bool {
	if r > unicode.MaxASCII {
		return unicode.Is(unicode.Latin, r)
	}

	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
