package main

import (
	"context"
	"os"

	"codeberg.org/campusnavi/server/internal/config"
	"codeberg.org/campusnavi/server/internal/ingest"
	"codeberg.org/campusnavi/server/internal/llm"
	"codeberg.org/campusnavi/server/internal/logger"
	"codeberg.org/campusnavi/server/internal/storage"
)

func main() {
	flags := config.ParseIngesterFlags()

	// load environment variables
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	// connect to database
	ctx := context.Background()

	store, err := storage.NewClient(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}

	defer store.Close()

	logger.Info("connected to database")

	embedder := llm.NewOpenAIEmbedder(llm.OpenAIConfig{
		BaseURL: cfg.EmbeddingsBaseURL,
		APIKey:  cfg.EmbeddingsAPIKey,
		Model:   cfg.EmbeddingModel,
		Dim:     cfg.EmbeddingDim,
	})

	writer := ingest.NewWriter(store, embedder, ingest.DefaultOptions())

	ingested, skipped, failed := IngestPages(ctx, writer, flags.Path)

	if flags.Purge {
		purged, err := store.PurgeSuperseded(ctx)
		if err != nil {
			logger.Fatal("failed to purge superseded documents", "error", err)
		}

		logger.Info("purged superseded documents", "count", purged)
	}

	total, err := store.ChunkCount(ctx)
	if err != nil {
		logger.Fatal("failed to verify chunk count", "error", err)
	}

	logger.Info("ingestion finished",
		"ingested", ingested,
		"skipped", skipped,
		"failed", failed,
		"total_chunks", total,
	)

	if failed > 0 && ingested == 0 && skipped == 0 {
		os.Exit(1)
	}
}
