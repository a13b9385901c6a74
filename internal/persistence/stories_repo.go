package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"storyengine/internal/core"
)

type storyRepo struct {
	q queryer
}

// SaveStory inserts a new story row and its article links in one call,
// returning the generated id. Used by C6's save_story operation; the
// caller (orchestrator Phase 3) has already validated the cluster, so this
// is a plain insert, never an upsert.
func (r *storyRepo) SaveStory(ctx context.Context, story core.Story, articleIDs []string) (string, error) {
	embJSON, err := json.Marshal(story.EssenceEmbedding)
	if err != nil {
		return "", fmt.Errorf("marshal essence embedding: %w", err)
	}
	snippetsJSON, err := json.Marshal(story.ContextSnippets)
	if err != nil {
		return "", fmt.Errorf("marshal context snippets: %w", err)
	}

	var id string
	err = r.q.QueryRowContext(ctx, `
		INSERT INTO stories (title, connection_rationale, analysis_summary, essence_text, context_snippets, essence_embedding, essence_embedding_vector, affected_assets, is_active, created_at, last_update_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7::vector, $8, $9, $10, $11)
		RETURNING id
	`, story.Title, story.ConnectionRationale, story.AnalysisSummary, story.EssenceText, snippetsJSON, embJSON, formatVector(story.EssenceEmbedding), pq.Array(story.AffectedAssets), story.IsActive, story.CreatedAt, story.LastUpdateTime)
	if err != nil {
		return "", fmt.Errorf("insert story: %w", err)
	}

	for _, articleID := range articleIDs {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO story_article_links (story_id, article_id)
			VALUES ($1, $2)
			ON CONFLICT (story_id, article_id) DO NOTHING
		`, id, articleID)
		if err != nil {
			return "", fmt.Errorf("link story article %s: %w", articleID, err)
		}
	}
	return id, nil
}

// SaveStoryRelationship records a typed directed edge between two stories,
// no-op on the (source, target, relationship_type) unique conflict so a
// re-run of C13 tracking against the same parent is idempotent.
func (r *storyRepo) SaveStoryRelationship(ctx context.Context, sourceID, targetID, relationshipType, createdBy string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO story_relationships (source_story_id, target_story_id, relationship_type, is_active, created_by, created_at)
		VALUES ($1, $2, $3, true, $4, now())
		ON CONFLICT (source_story_id, target_story_id, relationship_type) DO NOTHING
	`, sourceID, targetID, relationshipType, createdBy)
	if err != nil {
		return fmt.Errorf("save story relationship: %w", err)
	}
	return nil
}

// FetchSimilarStories returns active stories nearest to embedding by cosine
// distance, restricted to stories last updated on or after since, for C12's
// historical-context retrieval and C13's continuity tracking. Filtering on
// last_update_time (not created_at) keeps an older story eligible as long as
// it was recently revisited.
func (r *storyRepo) FetchSimilarStories(ctx context.Context, embedding []float64, k int, since time.Time) ([]core.HistoricalCandidate, error) {
	vec := formatVector(embedding)
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, title, essence_text, essence_embedding_vector <=> $1::vector AS distance
		FROM stories
		WHERE is_active = true AND last_update_time >= $2
		ORDER BY essence_embedding_vector <=> $1::vector ASC
		LIMIT $3
	`, vec, since, k)
	if err != nil {
		return nil, fmt.Errorf("fetch similar stories: %w", err)
	}
	defer rows.Close()

	var out []core.HistoricalCandidate
	for rows.Next() {
		var c core.HistoricalCandidate
		if err := rows.Scan(&c.StoryID, &c.Title, &c.EssenceText, &c.Distance); err != nil {
			return nil, fmt.Errorf("scan historical candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// FetchCreatedSince returns stories (active or not) created at or after since
// along with the ids of the articles linked to each, for submission's
// downstream payload (spec.md 6).
func (r *storyRepo) FetchCreatedSince(ctx context.Context, since time.Time) ([]StoryWithArticles, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, title, connection_rationale, analysis_summary, essence_text, affected_assets, is_active, created_at, last_update_time
		FROM stories
		WHERE created_at >= $1
		ORDER BY created_at ASC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("fetch stories since: %w", err)
	}
	defer rows.Close()

	var out []StoryWithArticles
	for rows.Next() {
		var s core.Story
		if err := rows.Scan(&s.ID, &s.Title, &s.ConnectionRationale, &s.AnalysisSummary, &s.EssenceText, pq.Array(&s.AffectedAssets), &s.IsActive, &s.CreatedAt, &s.LastUpdateTime); err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		out = append(out, StoryWithArticles{Story: s})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		articleRows, err := r.q.QueryContext(ctx, `SELECT article_id FROM story_article_links WHERE story_id = $1`, out[i].Story.ID)
		if err != nil {
			return nil, fmt.Errorf("fetch article links for story %s: %w", out[i].Story.ID, err)
		}
		var ids []string
		for articleRows.Next() {
			var id string
			if err := articleRows.Scan(&id); err != nil {
				articleRows.Close()
				return nil, fmt.Errorf("scan article link: %w", err)
			}
			ids = append(ids, id)
		}
		err = articleRows.Err()
		articleRows.Close()
		if err != nil {
			return nil, err
		}
		out[i].ArticleIDs = ids
	}
	return out, nil
}

// formatVector renders a float64 slice as a pgvector literal, mirrored from
// internal/vectorstore since that package's helper is unexported.
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
