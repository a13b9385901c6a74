package persistence

import (
	"context"
	"fmt"
	"time"

	"storyengine/internal/core"
)

type edgeRepo struct {
	q queryer
}

// SaveEdges bulk-upserts on (source, target, run_date), updating all score
// columns and updated_at, per spec.md 4.6. Idempotent: applying the same
// batch twice yields identical row count and column values (spec.md 8).
func (r *edgeRepo) SaveEdges(ctx context.Context, edges []core.GraphEdge) error {
	for _, e := range edges {
		if e.SourceArticleID >= e.TargetArticleID {
			return fmt.Errorf("save edges: edge %s-%s is not canonically oriented", e.SourceArticleID, e.TargetArticleID)
		}
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO graph_edges (source_article_id, target_article_id, semantic_score, entity_score, temporal_score, total_score, run_date, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (source_article_id, target_article_id, run_date) DO UPDATE SET
				semantic_score = EXCLUDED.semantic_score,
				entity_score = EXCLUDED.entity_score,
				temporal_score = EXCLUDED.temporal_score,
				total_score = EXCLUDED.total_score,
				updated_at = EXCLUDED.updated_at
		`, e.SourceArticleID, e.TargetArticleID, e.SemanticScore, e.EntityScore, e.TemporalScore, e.TotalScore, e.RunDate, e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("save edge %s-%s: %w", e.SourceArticleID, e.TargetArticleID, err)
		}
	}
	return nil
}

// FetchEdges returns rows whose total_score >= minTotal for runDate.
func (r *edgeRepo) FetchEdges(ctx context.Context, runDate time.Time, minTotal float64) ([]core.GraphEdge, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT source_article_id, target_article_id, semantic_score, entity_score, temporal_score, total_score, run_date, updated_at
		FROM graph_edges
		WHERE run_date = $1 AND total_score >= $2
	`, runDate, minTotal)
	if err != nil {
		return nil, fmt.Errorf("fetch edges: %w", err)
	}
	defer rows.Close()

	var edges []core.GraphEdge
	for rows.Next() {
		var e core.GraphEdge
		if err := rows.Scan(&e.SourceArticleID, &e.TargetArticleID, &e.SemanticScore, &e.EntityScore, &e.TemporalScore, &e.TotalScore, &e.RunDate, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
