// Package vectorstore provides pgvector-backed approximate nearest-neighbor
// search for C7's article interaction scoring. Story essence retrieval
// (C12/C13) queries the stories table directly through
// internal/persistence's storyRepo instead, since it needs title and
// essence_text columns this package's SearchResult doesn't carry.
package vectorstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// SearchResult is one ANN hit.
type SearchResult struct {
	ID         string
	Similarity float64
	Distance   float64
}

// Searcher is the k-NN capability C7's interaction scorer depends on.
type Searcher interface {
	SearchSimilar(ctx context.Context, embedding []float64, k int, minSimilarity float64, excludeIDs []string) ([]SearchResult, error)
}

// PgVectorStore implements Searcher against one table/column pair.
type PgVectorStore struct {
	db         *sql.DB
	table      string
	idColumn   string
	vectorCol  string
	extraWhere string // e.g. "is_active = true", empty for none
}

// NewArticleStore builds a Searcher over the articles table.
func NewArticleStore(db *sql.DB) *PgVectorStore {
	return &PgVectorStore{db: db, table: "articles", idColumn: "id", vectorCol: "embedding_vector"}
}

// SearchSimilar returns up to k rows with similarity >= minSimilarity,
// excluding excludeIDs, ordered by ascending cosine distance.
func (p *PgVectorStore) SearchSimilar(ctx context.Context, embedding []float64, k int, minSimilarity float64, excludeIDs []string) ([]SearchResult, error) {
	vectorStr := formatVector(embedding)

	where := fmt.Sprintf("%s IS NOT NULL AND 1 - (%s <=> $1::vector) >= $2", p.vectorCol, p.vectorCol)
	if p.extraWhere != "" {
		where += " AND " + p.extraWhere
	}

	args := []interface{}{vectorStr, minSimilarity, k}
	if len(excludeIDs) > 0 {
		where += fmt.Sprintf(" AND %s::text NOT IN (SELECT unnest($4::text[]))", p.idColumn)
		args = append(args, pq.Array(excludeIDs))
	}

	query := fmt.Sprintf(`
		SELECT %s, 1 - (%s <=> $1::vector) AS similarity, %s <=> $1::vector AS distance
		FROM %s
		WHERE %s
		ORDER BY %s <=> $1::vector
		LIMIT $3
	`, p.idColumn, p.vectorCol, p.vectorCol, p.table, where, p.vectorCol)

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", p.table, err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Similarity, &r.Distance); err != nil {
			return nil, fmt.Errorf("scan %s result: %w", p.table, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	result := "["
	for i, val := range embedding {
		if i > 0 {
			result += ","
		}
		result += fmt.Sprintf("%f", val)
	}
	result += "]"
	return result
}
