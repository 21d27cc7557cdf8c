package search

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/campusnavi/server/internal/errors"
	"codeberg.org/campusnavi/server/internal/logger"
	"codeberg.org/campusnavi/server/internal/retriever"
	"codeberg.org/campusnavi/server/internal/storage"
	"github.com/gin-gonic/gin"
)

const (
	defaultTopK  = 10
	defaultAlpha = 0.6
	defaultBeta  = 0.4
)

type Searcher interface {
	Search(ctx context.Context, req retriever.Request) ([]retriever.RankedChunk, error)
}

// creates a handler for search requests
func Handler(engine Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "invalid request body: "+err.Error())
			return
		}

		engineReq, err := toEngineRequest(req)
		if err != nil {
			errors.Respond(c, err)
			return
		}

		results, err := engine.Search(c.Request.Context(), engineReq)
		if err != nil {
			if !errors.IsValidation(err) {
				logger.ErrorErr(err, "search failed",
					"strategy", engineReq.Strategy,
					"top_k", engineReq.TopK,
				)
			}

			errors.Respond(c, err)

			return
		}

		c.JSON(http.StatusOK, Response{
			Strategy: string(engineReq.Strategy),
			Count:    len(results),
			Results:  toResults(results),
		})
	}
}

func toEngineRequest(req Request) (retriever.Request, error) {
	strategy := retriever.Strategy(req.Strategy)
	if req.Strategy == "" {
		strategy = retriever.StrategyDense
	}

	topK := req.TopK
	if topK == 0 {
		topK = defaultTopK
	}

	alpha, beta := defaultAlpha, defaultBeta
	if req.Alpha != nil {
		alpha = *req.Alpha
	}

	if req.Beta != nil {
		beta = *req.Beta
	}

	filters, err := toFilters(req.Filters)
	if err != nil {
		return retriever.Request{}, err
	}

	return retriever.Request{
		Query:    req.Query,
		Strategy: strategy,
		Filters:  filters,
		TopK:     topK,
		Alpha:    alpha,
		Beta:     beta,
	}, nil
}

func toFilters(f *Filters) (*storage.Filters, error) {
	if f == nil {
		return nil, nil
	}

	filters := &storage.Filters{
		Campus:     f.Campus,
		Building:   f.Building,
		Department: f.Department,
		Lab:        f.Lab,
		Professor:  f.Professor,
		Tags:       f.Tags,
	}

	if f.ValidOn != "" {
		date, err := time.Parse("2006-01-02", f.ValidOn)
		if err != nil {
			return nil, errors.Validationf("valid_on must be YYYY-MM-DD, got %q", f.ValidOn)
		}

		filters.ValidOn = &date
	}

	return filters, nil
}

func toResults(ranked []retriever.RankedChunk) []Result {
	results := make([]Result, len(ranked))

	for i, r := range ranked {
		results[i] = Result{
			ChunkID:   r.Chunk.ChunkID,
			Text:      r.Chunk.Text,
			Score:     r.Score,
			SourceURL: r.Chunk.SourceURL,
			Metadata: Metadata{
				Campus:      r.Chunk.Campus,
				Building:    r.Chunk.Building,
				Department:  r.Chunk.Department,
				Lab:         r.Chunk.Lab,
				Professor:   r.Chunk.Professor,
				Tags:        r.Chunk.Tags,
				HeadingPath: r.Chunk.HeadingPath,
			},
		}
	}

	return results
}
