// Package persistence implements C6 PersistenceStore: all durable state for
// articles, entities, edges, stories, relationships, economic events, and
// the processing log.
package persistence

import (
	"context"
	"time"

	"storyengine/internal/core"
)

// Database is the top-level handle PersistenceStore exposes to the
// orchestrator: one connection pool, one repository per aggregate, and
// transaction acquisition for save_features' atomic write.
type Database interface {
	Articles() ArticleRepository
	Entities() EntityRepository
	ProcessingLogs() ProcessingLogRepository
	Edges() EdgeRepository
	Stories() StoryRepository
	Events() EventRepository

	BeginTx(ctx context.Context) (Transaction, error)
	Ping(ctx context.Context) error
	Close() error
}

// Transaction scopes a single save_features call: entity upserts, link
// upserts, the processing-log row, and the embedding write commit or
// rollback together (spec.md 4.6, 5, 8).
type Transaction interface {
	Articles() ArticleRepository
	Entities() EntityRepository
	ProcessingLogs() ProcessingLogRepository

	Commit() error
	Rollback() error
}

// ArticleRepository covers C6's article-facing operations.
type ArticleRepository interface {
	FetchUnprocessed(ctx context.Context, limit int) ([]core.Article, error)
	FetchProcessed(ctx context.Context, limit int) ([]core.Article, error)
	FetchByIDs(ctx context.Context, ids []string) ([]core.Article, error)
	UpdateEmbedding(ctx context.Context, articleID string, embedding []float64) error
}

// EntityRepository upserts entities and article<->entity links.
type EntityRepository interface {
	UpsertEntity(ctx context.Context, name, entityType string) (string, error)
	LinkArticleEntity(ctx context.Context, articleID, entityID string) error
	EntitiesForArticles(ctx context.Context, articleIDs []string) (map[string]map[string][]string, error)
}

// ProcessingLogRepository upserts per-article processing outcomes.
type ProcessingLogRepository interface {
	Upsert(ctx context.Context, log core.ProcessingLog) error
	MarkFailed(ctx context.Context, articleID, errorMessage string) error
}

// EdgeRepository covers C7/C8's edge persistence and retrieval.
type EdgeRepository interface {
	SaveEdges(ctx context.Context, edges []core.GraphEdge) error
	FetchEdges(ctx context.Context, runDate time.Time, minTotal float64) ([]core.GraphEdge, error)
}

// StoryRepository covers C6's story-facing operations.
type StoryRepository interface {
	SaveStory(ctx context.Context, story core.Story, articleIDs []string) (string, error)
	SaveStoryRelationship(ctx context.Context, sourceID, targetID, relationshipType, createdBy string) error
	FetchSimilarStories(ctx context.Context, embedding []float64, k int, since time.Time) ([]core.HistoricalCandidate, error)
	FetchCreatedSince(ctx context.Context, since time.Time) ([]StoryWithArticles, error)
}

// StoryWithArticles pairs a persisted story with the ids of the articles
// linked to it, for downstream submission batching.
type StoryWithArticles struct {
	Story      core.Story
	ArticleIDs []string
}

// EventRepository covers C5's economic-event queries and bulk upserts.
type EventRepository interface {
	FindEvents(ctx context.Context, start, end time.Time, keywords []string) ([]core.EconomicEvent, error)
	SaveEvents(ctx context.Context, events []core.EconomicEvent) error
}

// EnrichedSaver is the narrow surface save_features needs; implemented by
// *PostgresDB so the orchestrator does not need the full Database interface
// for Phase 1.
type EnrichedSaver interface {
	SaveFeatures(ctx context.Context, enriched core.EnrichedArticle, modelVersion string) error
}
