package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	trailingSpaceRegex = regexp.MustCompile(`[ \t]+\n`)
	blankRunRegex      = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText canonicalizes scraped text before hashing and chunking:
// NFKC (full-width Latin and half-width kana are common on Japanese campus
// pages), unified line endings, no trailing whitespace, blank runs
// collapsed. Hash stability across scrapes depends on this being applied
// to every ingest of the same page.
func NormalizeText(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = trailingSpaceRegex.ReplaceAllString(text, "\n")
	text = blankRunRegex.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// contentHash digests normalized text for idempotency checks.
func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
