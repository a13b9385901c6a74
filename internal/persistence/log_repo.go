package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"storyengine/internal/apperr"
	"storyengine/internal/core"
)

// maxErrorMessageLen bounds ProcessingLog.ErrorMessage, per spec.md 4.6's
// "truncated error message".
const maxErrorMessageLen = 500

type logRepo struct {
	q queryer
}

// Upsert writes the processing log row by article_id, per spec.md 3/4.6.
func (r *logRepo) Upsert(ctx context.Context, log core.ProcessingLog) error {
	if log.ErrorMessage != nil {
		truncated := apperr.Truncate(*log.ErrorMessage, maxErrorMessageLen)
		log.ErrorMessage = &truncated
	}
	var assetsJSON []byte
	if len(log.AffectedAssets) > 0 {
		var err error
		assetsJSON, err = json.Marshal(log.AffectedAssets)
		if err != nil {
			return fmt.Errorf("marshal affected assets: %w", err)
		}
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO processing_log (article_id, status, embedding_model_version, event_type, surprise_score, affected_assets, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (article_id) DO UPDATE SET
			status = EXCLUDED.status,
			embedding_model_version = EXCLUDED.embedding_model_version,
			event_type = EXCLUDED.event_type,
			surprise_score = EXCLUDED.surprise_score,
			affected_assets = EXCLUDED.affected_assets,
			error_message = EXCLUDED.error_message
	`, log.ArticleID, log.Status, log.EmbeddingModelVersion, log.EventType, log.SurpriseScore, assetsJSON, log.ErrorMessage)
	if err != nil {
		return fmt.Errorf("upsert processing log: %w", err)
	}
	return nil
}

// MarkFailed writes a best-effort, out-of-transaction failed log row, used
// by PersistenceStore.SaveFeatures after a rolled-back transaction per
// spec.md 4.6.
func (r *logRepo) MarkFailed(ctx context.Context, articleID, errorMessage string) error {
	truncated := apperr.Truncate(errorMessage, maxErrorMessageLen)
	return r.Upsert(ctx, core.ProcessingLog{
		ArticleID:    articleID,
		Status:       core.StatusFailed,
		ErrorMessage: &truncated,
	})
}
