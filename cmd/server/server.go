package main

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/campusnavi/server/internal/config"
	"codeberg.org/campusnavi/server/internal/llm"
	"codeberg.org/campusnavi/server/internal/retriever"
	"codeberg.org/campusnavi/server/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// embedding requests issued on behalf of queries; local servers fall over
// under unbounded concurrency
const queryEmbedRequestsPerSecond = 10

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// managed Postgres poolers allow few connections; keep the pool small
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// PgBouncer in transaction mode doesn't support prepared statements
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := storage.NewClientWithPool(db)

	embedder := llm.NewOpenAIEmbedder(llm.OpenAIConfig{
		BaseURL:           cfg.EmbeddingsBaseURL,
		APIKey:            cfg.EmbeddingsAPIKey,
		Model:             cfg.EmbeddingModel,
		Dim:               cfg.EmbeddingDim,
		RequestsPerSecond: queryEmbedRequestsPerSecond,
	})

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		db:       db,
		config:   cfg,
		store:    store,
		embedder: embedder,
		engine:   retriever.New(store, embedder),
		router:   gin.Default(),
	}

	RegisterRoutes(server.router, server)

	return server, nil
}
