package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"storyengine/internal/core"
)

type articleRepo struct {
	q queryer
}

// FetchUnprocessed returns articles with no log row or status = pending,
// per spec.md 4.6.
func (r *articleRepo) FetchUnprocessed(ctx context.Context, limit int) ([]core.Article, error) {
	query := `
		SELECT a.id, a.url, a.title, a.source, a.publication_time, a.fetched_time, a.embedding
		FROM articles a
		LEFT JOIN processing_log pl ON pl.article_id = a.id
		WHERE pl.article_id IS NULL OR pl.status = $1
		ORDER BY a.fetched_time ASC
		LIMIT $2
	`
	rows, err := r.q.QueryContext(ctx, query, core.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unprocessed articles: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

// FetchProcessed returns articles with status = success and a non-null
// embedding, per spec.md 4.6.
func (r *articleRepo) FetchProcessed(ctx context.Context, limit int) ([]core.Article, error) {
	query := `
		SELECT a.id, a.url, a.title, a.source, a.publication_time, a.fetched_time, a.embedding
		FROM articles a
		JOIN processing_log pl ON pl.article_id = a.id
		WHERE pl.status = $1 AND a.embedding IS NOT NULL
		ORDER BY a.fetched_time DESC
		LIMIT $2
	`
	rows, err := r.q.QueryContext(ctx, query, core.StatusSuccess, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch processed articles: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

// FetchByIDs returns articles joined with their entities as a single
// aggregate row is approximated here by a plain article fetch; callers that
// need entities call EntityRepository.EntitiesForArticles separately, kept
// distinct so each repository owns exactly one concern.
func (r *articleRepo) FetchByIDs(ctx context.Context, ids []string) ([]core.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, url, title, source, publication_time, fetched_time, embedding
		FROM articles WHERE id = ANY($1)
	`
	rows, err := r.q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("fetch articles by ids: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

// UpdateEmbedding writes both the full-precision jsonb column and the
// pgvector column C7's neighbor search reads, per the dual-column pattern
// shared with stories.essence_embedding. A nil/empty embedding leaves
// embedding_vector NULL, which the neighbor search already filters out.
func (r *articleRepo) UpdateEmbedding(ctx context.Context, articleID string, embedding []float64) error {
	embJSON, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}
	if len(embedding) == 0 {
		_, err = r.q.ExecContext(ctx, `UPDATE articles SET embedding = $1 WHERE id = $2`, embJSON, articleID)
	} else {
		_, err = r.q.ExecContext(ctx,
			`UPDATE articles SET embedding = $1, embedding_vector = $2::vector WHERE id = $3`,
			embJSON, formatVector(embedding), articleID)
	}
	if err != nil {
		return fmt.Errorf("update embedding: %w", err)
	}
	return nil
}

func scanArticles(rows *sql.Rows) ([]core.Article, error) {
	var articles []core.Article
	for rows.Next() {
		var a core.Article
		var embJSON []byte
		if err := rows.Scan(&a.ID, &a.URL, &a.Title, &a.Source, &a.PublicationTime, &a.FetchedTime, &embJSON); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		if len(embJSON) > 0 {
			if err := json.Unmarshal(embJSON, &a.Embedding); err != nil {
				return nil, fmt.Errorf("unmarshal embedding: %w", err)
			}
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
