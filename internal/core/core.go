// Package core holds the domain records shared across the pipeline.
package core

import "time"

// Article is one ingested news item identified by URL.
type Article struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	Source          string    `json:"source"`
	PublicationTime time.Time `json:"publication_time"`
	FetchedTime     time.Time `json:"fetched_time"`
	Embedding       []float64 `json:"embedding,omitempty"`

	// FullText is transient: produced by FeatureExtractor, consumed within
	// the same Phase 1 worker run, never persisted.
	FullText string `json:"-"`
}

// Entity is a named thing mentioned in article text.
type Entity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	CanonicalID string `json:"canonical_id,omitempty"`
}

// ArticleEntity links an Article to an Entity it mentions.
type ArticleEntity struct {
	ArticleID string `json:"article_id"`
	EntityID  string `json:"entity_id"`
}

// ProcessingLog status values.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// ProcessingLog tracks per-article enrichment progress and outcome. Carries
// the richer save_features variant (event_type, surprise_score,
// affected_assets) rather than the simpler one, per the Open Question
// resolution recorded in the grounding ledger.
type ProcessingLog struct {
	ArticleID             string          `json:"article_id"`
	Status                string          `json:"status"`
	EmbeddingModelVersion string          `json:"embedding_model_version,omitempty"`
	EventType             *string         `json:"event_type,omitempty"`
	SurpriseScore         *float64        `json:"surprise_score,omitempty"`
	AffectedAssets        []AssetDecision `json:"affected_assets,omitempty"`
	ErrorMessage          *string         `json:"error_message,omitempty"`
}

// GraphEdge is a thresholded interaction between two articles for one run date.
type GraphEdge struct {
	SourceArticleID string    `json:"source_article_id"`
	TargetArticleID string    `json:"target_article_id"`
	SemanticScore   float64   `json:"semantic_score"`
	EntityScore     float64   `json:"entity_score"`
	TemporalScore   float64   `json:"temporal_score"`
	TotalScore      float64   `json:"total_score"`
	RunDate         time.Time `json:"run_date"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Story is a validated, enriched, synthesized narrative.
type Story struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	ConnectionRationale string    `json:"connection_rationale"`
	AnalysisSummary     string    `json:"analysis_summary"`
	EssenceText         string    `json:"essence_text"`
	ContextSnippets     []string  `json:"context_snippets"`
	EssenceEmbedding    []float64 `json:"essence_embedding"`
	AffectedAssets      []string  `json:"affected_assets,omitempty"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	LastUpdateTime      time.Time `json:"last_update_time"`
}

// StoryArticleLink attributes an article to a story.
type StoryArticleLink struct {
	StoryID   string `json:"story_id"`
	ArticleID string `json:"article_id"`
}

// Known relationship types between stories.
const (
	RelationshipEvolvedFrom = "EVOLVED_FROM"
)

// StoryRelationship is a typed directed edge between two stories.
type StoryRelationship struct {
	SourceStoryID    string    `json:"source_story_id"`
	TargetStoryID    string    `json:"target_story_id"`
	RelationshipType string    `json:"relationship_type"`
	IsActive         bool      `json:"is_active"`
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
}

// EconomicEvent is an external macro event used for surprise scoring.
type EconomicEvent struct {
	EventName     string    `json:"event_name"`
	Country       string    `json:"country"`
	EventTime     time.Time `json:"event_time"`
	ActualValue   *float64  `json:"actual_value,omitempty"`
	ForecastValue *float64  `json:"forecast_value,omitempty"`
	PreviousValue *float64  `json:"previous_value,omitempty"`
	Impact        string    `json:"impact,omitempty"`
	Unit          string    `json:"unit,omitempty"`
}

// EnrichedArticle is the in-memory result of running C1-C5 over one article,
// passed as a whole to PersistenceStore.SaveFeatures.
type EnrichedArticle struct {
	Article       Article
	Entities      map[string][]string // type -> ordered, deduped names
	Embedding     []float64
	EventType     string // "" if none classified
	AssetFilter   []AssetDecision
	SurpriseScore *float64
}

// Impact polarity values reported by AssetFilter.
const (
	ImpactPositive = "positive"
	ImpactNegative = "negative"
	ImpactNeutral  = "neutral"
)

// AssetDecision is one LLM-confirmed asset implication.
type AssetDecision struct {
	Asset  string `json:"asset"`
	Reason string `json:"reason"`
	Impact string `json:"impact"`
}

// Signal strength values reported by ClusterValidator.
const (
	SignalStrong = "strong"
	SignalMedium = "medium"
	SignalWeak   = "weak"
)

// ValidationResult is C9's strict, tagged-variant response.
type ValidationResult struct {
	IsStory         bool
	SignalStrength  string  // required when IsStory
	ConfidenceScore float64 // required when IsStory, in [0,1]
	Reasoning       string  // optional when !IsStory
}

// ContinuityResult is C13's strict, tagged-variant response.
type ContinuityResult struct {
	IsContinuation bool
	ParentStoryID  string // populated only when IsContinuation
}

// HistoricalCandidate is one result row from HistoricalRetriever.
type HistoricalCandidate struct {
	StoryID     string
	Title       string
	EssenceText string
	Distance    float64
}

// SalientSnippet is one short bullet derived from an article for synthesis.
type SalientSnippet struct {
	Title           string
	Source          string
	PublicationTime time.Time
}
