package config

type Config struct {
	DatabaseURL       string
	EmbeddingsBaseURL string
	EmbeddingsAPIKey  string
	EmbeddingModel    string
	EmbeddingDim      int
	Environment       string
}

type IngesterFlags struct {
	Path  string
	Purge bool
}
