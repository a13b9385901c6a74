package clustering

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyengine/internal/vectorstore"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{1, 0}, []float64{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float64{1, 2}, []float64{1}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}

func TestJaccard(t *testing.T) {
	a := map[string]bool{"fed": true, "china": true}
	b := map[string]bool{"fed": true}
	assert.InDelta(t, 0.5, jaccard(a, b), 1e-9)
	assert.Equal(t, 0.0, jaccard(nil, b))
}

func TestTemporalScore(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 1.0, temporalScore(&now, &now))
	assert.Equal(t, 0.5, temporalScore(nil, &now))

	later := now.Add(7 * 24 * time.Hour)
	got := temporalScore(&now, &later)
	assert.InDelta(t, 0.367879, got, 1e-4) // exp(-1)
}

func TestCanonicalPair_OrdersConsistently(t *testing.T) {
	assert.Equal(t, canonicalPair("b", "a"), canonicalPair("a", "b"))
}

type fakeSearcher struct {
	neighbors map[string][]vectorstore.SearchResult
}

func (f fakeSearcher) SearchSimilar(ctx context.Context, embedding []float64, k int, minSimilarity float64, excludeIDs []string) ([]vectorstore.SearchResult, error) {
	for _, id := range excludeIDs {
		if res, ok := f.neighbors[id]; ok {
			return res, nil
		}
	}
	return nil, nil
}

func TestScoreAll_ThresholdFiltersEdges(t *testing.T) {
	articleA := ArticleInput{ID: "a", Embedding: []float64{1, 0}, EntityNames: map[string][]string{"ORG": {"Fed"}}}
	articleB := ArticleInput{ID: "b", Embedding: []float64{1, 0}, EntityNames: map[string][]string{"ORG": {"Fed"}}}
	articleC := ArticleInput{ID: "c", Embedding: []float64{0, 1}, EntityNames: nil}

	searcher := fakeSearcher{neighbors: map[string][]vectorstore.SearchResult{
		"a": {{ID: "b", Similarity: 1.0}, {ID: "c", Similarity: 0.0}},
	}}

	scorer := NewInteractionScorer(searcher, ScoreWeights{Semantic: 0.5, Entity: 0.3, Temporal: 0.2}, 5, 0.5)
	edges, err := scorer.ScoreAll(context.Background(), []ArticleInput{articleA, articleB, articleC}, time.Now())
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "a", edges[0].SourceArticleID)
	assert.Equal(t, "b", edges[0].TargetArticleID)
}

func TestScoreAll_NoEmbeddingSkipsArticle(t *testing.T) {
	articleA := ArticleInput{ID: "a", Embedding: nil}
	scorer := NewInteractionScorer(fakeSearcher{}, DefaultWeights(), 5, 0.1)
	edges, err := scorer.ScoreAll(context.Background(), []ArticleInput{articleA}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, edges)
}
