package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DocumentChunks returns every chunk belonging to a document in version and
// chunk_index order. Used by the audit/debug accessor, not by retrieval.
func (c *Client) DocumentChunks(ctx context.Context, docID string) ([]Chunk, error) {
	rows, err := c.pool.Query(ctx, documentChunksQuery, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to query document chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk

	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return chunks, nil
}

// ChunkCount returns the total number of chunks in the database.
func (c *Client) ChunkCount(ctx context.Context) (int, error) {
	var count int

	err := c.pool.QueryRow(ctx, chunkCountQuery).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get chunk count: %w", err)
	}

	return count, nil
}

func scanChunk(rows pgx.Rows) (Chunk, error) {
	var chunk Chunk

	err := rows.Scan(
		&chunk.ChunkID,
		&chunk.DocID,
		&chunk.ChunkIndex,
		&chunk.Text,
		&chunk.TokenCount,
		&chunk.HeadingPath,
		&chunk.Tags,
		&chunk.Campus,
		&chunk.Building,
		&chunk.Department,
		&chunk.Lab,
		&chunk.Professor,
		&chunk.ValidityStart,
		&chunk.ValidityEnd,
		&chunk.SourceURL,
		&chunk.EmbeddingModel,
		&chunk.EmbeddingDim,
		&chunk.Version,
		&chunk.CreatedAt,
	)
	if err != nil {
		return Chunk{}, fmt.Errorf("failed to scan chunk row: %w", err)
	}

	return chunk, nil
}

func scanScoredChunk(rows pgx.Rows) (ScoredChunk, error) {
	var (
		chunk Chunk
		score float64
	)

	err := rows.Scan(
		&chunk.ChunkID,
		&chunk.DocID,
		&chunk.ChunkIndex,
		&chunk.Text,
		&chunk.TokenCount,
		&chunk.HeadingPath,
		&chunk.Tags,
		&chunk.Campus,
		&chunk.Building,
		&chunk.Department,
		&chunk.Lab,
		&chunk.Professor,
		&chunk.ValidityStart,
		&chunk.ValidityEnd,
		&chunk.SourceURL,
		&chunk.EmbeddingModel,
		&chunk.EmbeddingDim,
		&chunk.Version,
		&chunk.CreatedAt,
		&score,
	)
	if err != nil {
		return ScoredChunk{}, fmt.Errorf("failed to scan scored chunk row: %w", err)
	}

	return ScoredChunk{Chunk: chunk, Score: score}, nil
}
