package documents

import (
	"context"
	"net/http"

	"codeberg.org/campusnavi/server/internal/errors"
	"codeberg.org/campusnavi/server/internal/logger"
	"codeberg.org/campusnavi/server/internal/storage"
	"github.com/gin-gonic/gin"
)

type ChunkStore interface {
	DocumentChunks(ctx context.Context, docID string) ([]storage.Chunk, error)
	DeleteDocument(ctx context.Context, docID string) error
}

// creates a handler that lists a document's chunk set, for audit/debugging
func ChunksHandler(store ChunkStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		docID := c.Param("id")

		chunks, err := store.DocumentChunks(c.Request.Context(), docID)
		if err != nil {
			logger.ErrorErr(err, "failed to load document chunks", "doc_id", docID)
			errors.Respond(c, err)

			return
		}

		if len(chunks) == 0 {
			errors.NotFound(c, "document has no chunks or does not exist")
			return
		}

		views := make([]ChunkView, len(chunks))
		for i, chunk := range chunks {
			views[i] = ChunkView{
				ChunkID:     chunk.ChunkID,
				ChunkIndex:  chunk.ChunkIndex,
				Text:        chunk.Text,
				TokenCount:  chunk.TokenCount,
				HeadingPath: chunk.HeadingPath,
				Tags:        chunk.Tags,
				Campus:      chunk.Campus,
				Building:    chunk.Building,
				Department:  chunk.Department,
				Lab:         chunk.Lab,
				Professor:   chunk.Professor,
				SourceURL:   chunk.SourceURL,
				Model:       chunk.EmbeddingModel,
				Dim:         chunk.EmbeddingDim,
				Version:     chunk.Version,
				CreatedAt:   chunk.CreatedAt,
			}
		}

		c.JSON(http.StatusOK, ChunksResponse{
			DocID:  docID,
			Count:  len(views),
			Chunks: views,
		})
	}
}

// creates a handler that deletes a document and, by cascade, its chunks
func DeleteHandler(store ChunkStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		docID := c.Param("id")

		if err := store.DeleteDocument(c.Request.Context(), docID); err != nil {
			if errors.IsValidation(err) {
				errors.NotFound(c, err.Error())
				return
			}

			logger.ErrorErr(err, "failed to delete document", "doc_id", docID)
			errors.Respond(c, err)

			return
		}

		c.Status(http.StatusNoContent)
	}
}
