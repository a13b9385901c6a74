package persistence

import (
	"context"
	"fmt"

	"storyengine/internal/core"
)

// SaveFeatures implements EnrichedSaver: entity upserts, article<->entity
// links, the embedding write, and the processing-log row all commit or
// roll back together, per spec.md 4.6/5/8's atomicity invariant. On any
// failure the transaction is rolled back and a best-effort, out-of-
// transaction failed log row is written, so the failure is recorded and
// FetchUnprocessed no longer picks the article up.
func (p *PostgresDB) SaveFeatures(ctx context.Context, enriched core.EnrichedArticle, modelVersion string) error {
	if err := p.saveFeaturesTx(ctx, enriched, modelVersion); err != nil {
		if markErr := p.logs.MarkFailed(ctx, enriched.Article.ID, err.Error()); markErr != nil {
			return fmt.Errorf("save features failed (%w) and mark-failed also failed: %v", err, markErr)
		}
		return err
	}
	return nil
}

func (p *PostgresDB) saveFeaturesTx(ctx context.Context, enriched core.EnrichedArticle, modelVersion string) error {
	tx, err := p.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin save features tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	for entityType, names := range enriched.Entities {
		for _, name := range names {
			entityID, err := tx.Entities().UpsertEntity(ctx, name, entityType)
			if err != nil {
				return fmt.Errorf("upsert entity %s/%s: %w", entityType, name, err)
			}
			if err := tx.Entities().LinkArticleEntity(ctx, enriched.Article.ID, entityID); err != nil {
				return fmt.Errorf("link entity %s/%s: %w", entityType, name, err)
			}
		}
	}

	if err := tx.Articles().UpdateEmbedding(ctx, enriched.Article.ID, enriched.Embedding); err != nil {
		return fmt.Errorf("update embedding: %w", err)
	}

	var eventType *string
	if enriched.EventType != "" {
		eventType = &enriched.EventType
	}
	log := core.ProcessingLog{
		ArticleID:             enriched.Article.ID,
		Status:                featureStatus(enriched),
		EmbeddingModelVersion: modelVersion,
		EventType:             eventType,
		SurpriseScore:         enriched.SurpriseScore,
		AffectedAssets:        enriched.AssetFilter,
	}
	if err := tx.ProcessingLogs().Upsert(ctx, log); err != nil {
		return fmt.Errorf("upsert processing log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save features tx: %w", err)
	}
	return nil
}

// featureStatus derives the processing-log status from what C1 actually
// produced: success requires both an embedding and at least one entity,
// partial requires either, failed requires neither, per spec.md 3's
// ProcessingLog invariant and 4.6's status computation.
func featureStatus(enriched core.EnrichedArticle) string {
	hasEmbedding := len(enriched.Embedding) > 0
	hasEntities := false
	for _, names := range enriched.Entities {
		if len(names) > 0 {
			hasEntities = true
			break
		}
	}
	switch {
	case hasEmbedding && hasEntities:
		return core.StatusSuccess
	case hasEmbedding || hasEntities:
		return core.StatusPartial
	default:
		return core.StatusFailed
	}
}
