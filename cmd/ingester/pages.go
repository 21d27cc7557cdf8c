package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/campusnavi/server/internal/chunker"
	"codeberg.org/campusnavi/server/internal/ingest"
	"codeberg.org/campusnavi/server/internal/logger"
	"codeberg.org/campusnavi/server/internal/storage"
)

// pageFile is the on-disk shape the scraper writes, one JSON file per page.
type pageFile struct {
	URL           string         `json:"url"`
	Title         string         `json:"title"`
	SourceType    string         `json:"source_type"`
	Language      string         `json:"language"`
	Text          string         `json:"text"`
	Tags          []string       `json:"tags"`
	Campus        string         `json:"campus"`
	Building      string         `json:"building"`
	Department    string         `json:"department"`
	Lab           string         `json:"lab"`
	Professors    []string       `json:"professors"`
	ValidityStart string         `json:"validity_start"`
	ValidityEnd   string         `json:"validity_end"`
	Meta          map[string]any `json:"meta"`
}

// IngestPages walks the directory for scraped page files and ingests each
// one. A failing page is logged and skipped so one bad scrape never blocks
// the rest of the batch.
func IngestPages(ctx context.Context, writer *ingest.Writer, path string) (ingested, skipped, failed int) {
	logger.Info("starting page ingestion", "path", path)

	var files []string

	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(p, ".json") {
			files = append(files, p)
		}

		return nil
	})
	if err != nil {
		logger.Error("failed to walk pages directory", "path", path, "error", err)
		return 0, 0, 0
	}

	if len(files) == 0 {
		logger.Warn("no page files found", "path", path)
		return 0, 0, 0
	}

	logger.Info("found page files", "count", len(files))

	for _, file := range files {
		result, err := ingestPage(ctx, writer, file)
		if err != nil {
			failed++
			logger.Error("failed to ingest page", "file", file, "error", err)

			continue
		}

		if result.Skipped {
			skipped++
			continue
		}

		ingested++
	}

	return ingested, skipped, failed
}

func ingestPage(ctx context.Context, writer *ingest.Writer, file string) (*ingest.Result, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read page file: %w", err)
	}

	var page pageFile
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to parse page file: %w", err)
	}

	validityStart, err := parseDate(page.ValidityStart)
	if err != nil {
		return nil, fmt.Errorf("invalid validity_start: %w", err)
	}

	validityEnd, err := parseDate(page.ValidityEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid validity_end: %w", err)
	}

	// heading offsets are computed against the normalized text, which the
	// writer's own normalization then passes through unchanged
	text := ingest.NormalizeText(page.Text)
	outline := extractOutline(text)

	src := ingest.Source{
		URL:           page.URL,
		Title:         page.Title,
		SourceType:    storage.SourceType(page.SourceType),
		Language:      page.Language,
		Tags:          page.Tags,
		Campus:        page.Campus,
		Building:      page.Building,
		Department:    page.Department,
		Lab:           page.Lab,
		Professors:    page.Professors,
		ValidityStart: validityStart,
		ValidityEnd:   validityEnd,
		Meta:          page.Meta,
	}

	return writer.Ingest(ctx, text, outline, src)
}

// extractOutline scans for markdown-style heading lines and records their
// level and byte offset within the text.
func extractOutline(text string) []chunker.Heading {
	var outline []chunker.Heading

	offset := 0

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		level := 0
		for level < len(trimmed) && trimmed[level] == '#' {
			level++
		}

		if level > 0 && level <= 6 && level < len(trimmed) && trimmed[level] == ' ' {
			outline = append(outline, chunker.Heading{
				Level:  level,
				Text:   strings.TrimSpace(trimmed[level:]),
				Offset: offset,
			})
		}

		offset += len(line) + 1
	}

	return outline
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
