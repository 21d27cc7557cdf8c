package llm

import "context"

// Embedder generates fixed-dimension embeddings from text.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// Model and Dim identify the embedding space every returned vector
	// belongs to.
	Model() string
	Dim() int
}

// OpenAIConfig configures the OpenAI-compatible embedder. BaseURL may point
// at api.openai.com or any compatible local server (LM Studio, Ollama).
type OpenAIConfig struct {
	BaseURL string
	APIKey  string // empty is fine for local servers
	Model   string
	Dim     int

	// requests per second against the provider; zero means no pacing
	RequestsPerSecond float64
}
