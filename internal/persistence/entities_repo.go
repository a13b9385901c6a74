package persistence

import (
	"context"
	"fmt"

	"github.com/lib/pq"
)

type entityRepo struct {
	q queryer
}

// UpsertEntity enforces the (name, type) uniqueness invariant from spec.md 3,
// collapsing duplicates and returning the stable id either way.
func (r *entityRepo) UpsertEntity(ctx context.Context, name, entityType string) (string, error) {
	var id string
	query := `
		INSERT INTO entities (name, type)
		VALUES ($1, $2)
		ON CONFLICT (name, type) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`
	if err := r.q.QueryRowContext(ctx, query, name, entityType).Scan(&id); err != nil {
		return "", fmt.Errorf("upsert entity: %w", err)
	}
	return id, nil
}

// LinkArticleEntity enforces the (article_id, entity_id) uniqueness
// invariant, no-op on conflict.
func (r *entityRepo) LinkArticleEntity(ctx context.Context, articleID, entityID string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO article_entities (article_id, entity_id)
		VALUES ($1, $2)
		ON CONFLICT (article_id, entity_id) DO NOTHING
	`, articleID, entityID)
	if err != nil {
		return fmt.Errorf("link article entity: %w", err)
	}
	return nil
}

// EntitiesForArticles returns, per article id, a type -> names mapping,
// used to build C9's "entities that appear in >= 2 of the articles" prompt
// content.
func (r *entityRepo) EntitiesForArticles(ctx context.Context, articleIDs []string) (map[string]map[string][]string, error) {
	if len(articleIDs) == 0 {
		return nil, nil
	}
	rows, err := r.q.QueryContext(ctx, `
		SELECT ae.article_id, e.type, e.name
		FROM article_entities ae
		JOIN entities e ON e.id = ae.entity_id
		WHERE ae.article_id = ANY($1)
	`, pq.Array(articleIDs))
	if err != nil {
		return nil, fmt.Errorf("fetch entities for articles: %w", err)
	}
	defer rows.Close()

	result := make(map[string]map[string][]string)
	for rows.Next() {
		var articleID, entityType, name string
		if err := rows.Scan(&articleID, &entityType, &name); err != nil {
			return nil, fmt.Errorf("scan article entity: %w", err)
		}
		if result[articleID] == nil {
			result[articleID] = make(map[string][]string)
		}
		result[articleID][entityType] = append(result[articleID][entityType], name)
	}
	return result, rows.Err()
}
