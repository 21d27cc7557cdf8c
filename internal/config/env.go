package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	// nomic-embed-text-v1.5, the model the campus corpus is embedded with
	defaultEmbeddingModel = "text-embedding-nomic-embed-text-v1.5"
	defaultEmbeddingDim   = 768

	// LM Studio's OpenAI-compatible endpoint on the default port
	defaultEmbeddingsBaseURL = "http://127.0.0.1:1234/v1"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	baseURL := os.Getenv("EMBEDDINGS_BASE_URL")
	if baseURL == "" {
		baseURL = defaultEmbeddingsBaseURL
	}

	model := os.Getenv("EMBEDDING_MODEL")
	if model == "" {
		model = defaultEmbeddingModel
	}

	dim := defaultEmbeddingDim
	if dimStr := os.Getenv("EMBEDDING_DIM"); dimStr != "" {
		val, err := strconv.Atoi(dimStr)
		if err != nil || val <= 0 {
			return nil, fmt.Errorf("EMBEDDING_DIM must be a positive integer, got %q", dimStr)
		}
		dim = val
	}

	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	return &Config{
		DatabaseURL:       databaseURL,
		EmbeddingsBaseURL: baseURL,
		EmbeddingsAPIKey:  os.Getenv("EMBEDDINGS_API_KEY"), // empty is fine for LM Studio
		EmbeddingModel:    model,
		EmbeddingDim:      dim,
		Environment:       environment,
	}, nil
}
