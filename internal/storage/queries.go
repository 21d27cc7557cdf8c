package storage

// column list shared by every query that scans a full chunk row; the
// scalar prefilter fields are nullable in the schema, so they come back
// through COALESCE
const chunkColumns = `
	c.chunk_id::text,
	c.doc_id::text,
	c.chunk_index,
	c.text,
	c.token_count,
	c.heading_path,
	c.tags,
	COALESCE(c.campus, ''),
	COALESCE(c.building, ''),
	COALESCE(c.department, ''),
	COALESCE(c.lab, ''),
	c.professor,
	c.validity_start,
	c.validity_end,
	c.source_url,
	c.embedding_model,
	c.embedding_dim,
	c.version,
	c.created_at`

const (
	activeDocumentByURLQuery = `
		SELECT doc_id::text, source_url, source_type, title, language,
		       fetched_at, updated_at, content_hash, status, meta
		FROM documents
		WHERE source_url = $1 AND status = 'active'
	`

	supersedeDocumentQuery = `
		UPDATE documents
		SET status = 'superseded', updated_at = now()
		WHERE source_url = $1 AND status = 'active'
	`

	insertDocumentQuery = `
		INSERT INTO documents
			(doc_id, source_url, source_type, title, language,
			 fetched_at, updated_at, content_hash, status, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	insertChunkQuery = `
		INSERT INTO chunks
			(chunk_id, doc_id, chunk_index, text, token_count,
			 heading_path, tags, campus, building, department, lab, professor,
			 validity_start, validity_end, source_url,
			 embedding, embedding_model, embedding_dim, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
			NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''),
			$12, $13, $14, $15, $16, $17, $18, $19)
	`

	deleteDocumentQuery = "DELETE FROM documents WHERE doc_id = $1"

	purgeSupersededQuery = "DELETE FROM documents WHERE status = 'superseded'"

	latestChunkVersionQuery = `
		SELECT COALESCE(MAX(version), 0) FROM chunks WHERE source_url = $1
	`

	documentChunksQuery = `
		SELECT ` + chunkColumns + `
		FROM chunks c
		WHERE c.doc_id = $1
		ORDER BY c.version, c.chunk_index
	`

	chunkCountQuery = "SELECT COUNT(*) FROM chunks"

	// %s is the assembled WHERE clause, %d the LIMIT placeholder index
	denseRankQueryFmt = `
		SELECT ` + chunkColumns + `,
		       1 - (c.embedding <=> $1) AS score
		FROM chunks c
		JOIN documents d ON d.doc_id = c.doc_id
		WHERE %s
		ORDER BY c.embedding <=> $1, c.chunk_index
		LIMIT $%d
	`

	lexicalRankQueryFmt = `
		SELECT ` + chunkColumns + `,
		       ts_rank_cd(c.text_tsv, plainto_tsquery('simple', $1)) AS score
		FROM chunks c
		JOIN documents d ON d.doc_id = c.doc_id
		WHERE c.text_tsv @@ plainto_tsquery('simple', $1) AND %s
		ORDER BY score DESC, c.chunk_index
		LIMIT $%d
	`
)
