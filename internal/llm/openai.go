package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"codeberg.org/campusnavi/server/internal/errors"
	"golang.org/x/time/rate"
)

// shared HTTP client for embedding API calls
// reuses connection pool and timeout configuration
var embeddingsHTTPClient = &http.Client{
	Timeout: 60 * time.Second, // total request timeout
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

// OpenAIEmbedder talks to an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	config     OpenAIConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewOpenAIEmbedder(config OpenAIConfig) *OpenAIEmbedder {
	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	return &OpenAIEmbedder{
		config:     config,
		httpClient: embeddingsHTTPClient, // shared client with pooling and timeouts
		limiter:    limiter,
	}
}

func (e *OpenAIEmbedder) Model() string {
	return e.config.Model
}

func (e *OpenAIEmbedder) Dim() int {
	return e.config.Dim
}

func (e *OpenAIEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 {
		return nil, errors.Externalf("no embeddings returned")
	}

	return embeddings[0], nil
}

func (e *OpenAIEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.Validationf("no texts provided")
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, errors.External(err, "rate limiter wait interrupted")
		}
	}

	jsonData, err := json.Marshal(embeddingRequest{
		Input: texts,
		Model: e.config.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(e.config.BaseURL, "/") + "/embeddings"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if e.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.config.APIKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, errors.Transient(err, "embeddings request failed")
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := fmt.Errorf("status %d: %s", resp.StatusCode, string(body))

		// 429 and server-side failures may pass on retry; other 4xx
		// means the request itself is bad and never will
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, errors.Transient(apiErr, "embeddings API unavailable")
		}

		return nil, errors.Validation(apiErr, "embeddings API rejected request")
	}

	var embResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, errors.External(err, "failed to decode embeddings response")
	}

	if len(embResp.Data) != len(texts) {
		return nil, errors.Externalf(
			"embeddings count mismatch: sent %d texts, got %d vectors",
			len(texts), len(embResp.Data),
		)
	}

	embeddings := make([][]float32, len(embResp.Data))
	for _, data := range embResp.Data {
		if data.Index < 0 || data.Index >= len(embeddings) {
			return nil, errors.Externalf("embedding index %d out of range", data.Index)
		}
		embeddings[data.Index] = data.Embedding
	}

	return embeddings, nil
}
