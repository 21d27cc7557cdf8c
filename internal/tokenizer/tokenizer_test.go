package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_LatinRuns(t *testing.T) {
	tokens := Simple{}.Tokenize("open campus 2026")

	require.Len(t, tokens, 3)
	assert.Equal(t, "open", tokens[0].Text)
	assert.Equal(t, "campus", tokens[1].Text)
	assert.Equal(t, "2026", tokens[2].Text)
}

func TestTokenize_OffsetsSliceBackToSource(t *testing.T) {
	text := "  hello,  world  "

	tokens := Simple{}.Tokenize(text)

	require.NotEmpty(t, tokens)

	for _, tok := range tokens {
		assert.Equal(t, tok.Text, text[tok.Start:tok.End])
	}
}

func TestTokenize_CJKOneTokenPerRune(t *testing.T) {
	tokens := Simple{}.Tokenize("東京電機大学")

	require.Len(t, tokens, 6)
	assert.Equal(t, "東", tokens[0].Text)
	assert.Equal(t, "学", tokens[5].Text)

	// multi-byte offsets still slice cleanly
	assert.Equal(t, 0, tokens[0].Start)
	assert.Equal(t, 3, tokens[0].End)
}

func TestTokenize_MixedJapaneseLatin(t *testing.T) {
	text := "千住キャンパスの Building 2"

	tokens := Simple{}.Tokenize(text)

	var texts []string
	for _, tok := range tokens {
		texts = append(texts, tok.Text)
	}

	assert.Equal(t, []string{"千", "住", "キ", "ャ", "ン", "パ", "ス", "の", "Building", "2"}, texts)
}

func TestTokenize_PunctuationStandsAlone(t *testing.T) {
	tokens := Simple{}.Tokenize("art-science")

	require.Len(t, tokens, 3)
	assert.Equal(t, "art", tokens[0].Text)
	assert.Equal(t, "-", tokens[1].Text)
	assert.Equal(t, "science", tokens[2].Text)
}

func TestTokenize_EmptyAndWhitespace(t *testing.T) {
	assert.Empty(t, Simple{}.Tokenize(""))
	assert.Empty(t, Simple{}.Tokenize("   \n\t  "))
}

func TestTokenize_Deterministic(t *testing.T) {
	text := "神田キャンパス System Design 学部, 2号館"

	first := Simple{}.Tokenize(text)

	for n := 0; n < 10; n++ {
		assert.Equal(t, first, Simple{}.Tokenize(text))
	}
}
