package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"
)

// DenseRank orders chunks of active documents by cosine distance to the
// query vector and returns the closest `limit`, scored as cosine
// similarity. Filters restrict the candidate set before ranking.
func (c *Client) DenseRank(ctx context.Context, vector []float32, filters *Filters, limit int) ([]ScoredChunk, error) {
	args := []any{pgvector.NewVector(vector)}
	clauses, args := filters.clauses(args)
	args = append(args, limit)

	query := fmt.Sprintf(denseRankQueryFmt, whereClause(clauses), len(args))

	return c.rankQuery(ctx, query, args)
}

// LexicalRank orders chunks of active documents by full-text relevance of
// the query terms against the chunk text. Filters restrict the candidate
// set before ranking; chunks with no matching terms are not candidates.
func (c *Client) LexicalRank(ctx context.Context, query string, filters *Filters, limit int) ([]ScoredChunk, error) {
	args := []any{query}
	clauses, args := filters.clauses(args)
	args = append(args, limit)

	sql := fmt.Sprintf(lexicalRankQueryFmt, whereClause(clauses), len(args))

	return c.rankQuery(ctx, sql, args)
}

// superseded generations stay in the table but never rank
func whereClause(clauses []string) string {
	where := "d.status = 'active'"

	if len(clauses) > 0 {
		where += " AND " + strings.Join(clauses, " AND ")
	}

	return where
}

func (c *Client) rankQuery(ctx context.Context, query string, args []any) ([]ScoredChunk, error) {
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ranking query: %w", err)
	}
	defer rows.Close()

	var results []ScoredChunk

	for rows.Next() {
		result, err := scanScoredChunk(rows)
		if err != nil {
			return nil, err
		}

		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}
