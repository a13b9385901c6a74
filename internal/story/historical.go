package story

import (
	"context"
	"time"

	"storyengine/internal/core"
)

// SimilarStoryFinder is the subset of persistence.StoryRepository this
// component depends on.
type SimilarStoryFinder interface {
	FetchSimilarStories(ctx context.Context, embedding []float64, k int, since time.Time) ([]core.HistoricalCandidate, error)
}

// HistoricalRetriever runs C12.
type HistoricalRetriever struct {
	stories SimilarStoryFinder
}

// NewHistoricalRetriever builds a HistoricalRetriever over the story repository.
func NewHistoricalRetriever(stories SimilarStoryFinder) *HistoricalRetriever {
	return &HistoricalRetriever{stories: stories}
}

// Retrieve returns the k active stories nearest vector by cosine distance,
// last updated on or after since, ascending by distance, per spec.md 4.12.
func (h *HistoricalRetriever) Retrieve(ctx context.Context, vector []float64, k int, since time.Time) ([]core.HistoricalCandidate, error) {
	return h.stories.FetchSimilarStories(ctx, vector, k, since)
}
