package main

import (
	"codeberg.org/campusnavi/server/internal/config"
	"codeberg.org/campusnavi/server/internal/llm"
	"codeberg.org/campusnavi/server/internal/retriever"
	"codeberg.org/campusnavi/server/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// holds all dependencies and state for the API server
type Server struct {
	db       *pgxpool.Pool
	config   *config.Config
	store    *storage.Client
	embedder llm.Embedder
	engine   *retriever.Client
	router   *gin.Engine
}
