package storage

import (
	"context"
	stderrors "errors"
	"fmt"

	"codeberg.org/campusnavi/server/internal/errors"
	"codeberg.org/campusnavi/server/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// ActiveDocumentByURL returns the active document for a source URL, or nil
// when the URL has never been ingested.
func (c *Client) ActiveDocumentByURL(ctx context.Context, sourceURL string) (*Document, error) {
	var doc Document

	err := c.pool.QueryRow(ctx, activeDocumentByURLQuery, sourceURL).Scan(
		&doc.DocID,
		&doc.SourceURL,
		&doc.SourceType,
		&doc.Title,
		&doc.Language,
		&doc.FetchedAt,
		&doc.UpdatedAt,
		&doc.ContentHash,
		&doc.Status,
		&doc.Meta,
	)

	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query active document: %w", err)
	}

	return &doc, nil
}

// CreateDocumentWithChunks materializes one document and all its chunks in
// a single transaction: the previous active row for the same source URL is
// marked superseded, the new document row is inserted, and the chunks go in
// as one batch. Any failure rolls the whole transaction back, so a document
// is either fully present with all its chunks or not present at all.
func (c *Client) CreateDocumentWithChunks(ctx context.Context, doc *Document, chunks []Chunk) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// defer rollback - will be no-op if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !stderrors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("failed to rollback transaction", "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, supersedeDocumentQuery, doc.SourceURL); err != nil {
		return fmt.Errorf("failed to supersede previous document: %w", err)
	}

	_, err = tx.Exec(ctx, insertDocumentQuery,
		doc.DocID,
		doc.SourceURL,
		doc.SourceType,
		doc.Title,
		doc.Language,
		doc.FetchedAt,
		doc.UpdatedAt,
		doc.ContentHash,
		doc.Status,
		doc.Meta,
	)
	if err != nil {
		return classifyWriteError(err, "failed to insert document")
	}

	batch := &pgx.Batch{}

	for _, chunk := range chunks {
		batch.Queue(insertChunkQuery,
			chunk.ChunkID,
			chunk.DocID,
			chunk.ChunkIndex,
			chunk.Text,
			chunk.TokenCount,
			chunk.HeadingPath,
			chunk.Tags,
			chunk.Campus,
			chunk.Building,
			chunk.Department,
			chunk.Lab,
			chunk.Professor,
			chunk.ValidityStart,
			chunk.ValidityEnd,
			chunk.SourceURL,
			pgvector.NewVector(chunk.Embedding),
			chunk.EmbeddingModel,
			chunk.EmbeddingDim,
			chunk.Version,
		)
	}

	br := tx.SendBatch(ctx, batch)

	for i := 0; i < len(chunks); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck,gosec // G104: error path cleanup
			return classifyWriteError(err, fmt.Sprintf("failed to insert chunk %d", i))
		}
	}

	// must close batch results before committing, otherwise the
	// connection is still busy
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteDocument removes a document; its chunks go with it through the
// ON DELETE CASCADE foreign key.
func (c *Client) DeleteDocument(ctx context.Context, docID string) error {
	tag, err := c.pool.Exec(ctx, deleteDocumentQuery, docID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return errors.Validationf("document %s not found", docID)
	}

	return nil
}

// PurgeSuperseded deletes all superseded documents and, by cascade, their
// chunks. Retention is an operator decision, so this only runs when asked.
func (c *Client) PurgeSuperseded(ctx context.Context) (int64, error) {
	tag, err := c.pool.Exec(ctx, purgeSupersededQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to purge superseded documents: %w", err)
	}

	return tag.RowsAffected(), nil
}

// LatestChunkVersion returns the highest chunk version ever written for a
// source URL, zero when none exist.
func (c *Client) LatestChunkVersion(ctx context.Context, sourceURL string) (int, error) {
	var version int

	err := c.pool.QueryRow(ctx, latestChunkVersionQuery, sourceURL).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to query latest chunk version: %w", err)
	}

	return version, nil
}

// a unique-constraint violation inside the document transaction means two
// writers raced or a chunk_index was produced twice; both are integrity
// failures the caller must not retry blindly
func classifyWriteError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == "23505" {
		return errors.Integrity(err, msg)
	}

	return fmt.Errorf("%s: %w", msg, err)
}
