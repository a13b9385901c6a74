package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyengine/internal/core"
	"storyengine/internal/story"
)

func TestMeanEmbedding_AveragesDimensions(t *testing.T) {
	got, err := meanEmbedding([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, got)
}

func TestMeanEmbedding_RequiresAtLeastTwo(t *testing.T) {
	_, err := meanEmbedding([][]float64{{1, 2}})
	assert.Error(t, err)
}

func TestMeanEmbedding_SkipsMismatchedDimensions(t *testing.T) {
	got, err := meanEmbedding([][]float64{{1, 2}, {3, 4}, {1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, got)
}

func TestSharedEntityNames_AppearingInAtLeastTwoArticles(t *testing.T) {
	byArticle := map[string]map[string][]string{
		"a1": {"ORG": {"Federal Reserve", "Apple"}},
		"a2": {"ORG": {"Federal Reserve"}},
		"a3": {"ORG": {"Microsoft"}},
	}
	got := sharedEntityNames(byArticle, []string{"a1", "a2", "a3"})
	assert.Equal(t, []string{"federal reserve"}, got)
}

func TestSharedEntityNames_NoEntityMeetsThreshold(t *testing.T) {
	byArticle := map[string]map[string][]string{
		"a1": {"ORG": {"Apple"}},
		"a2": {"ORG": {"Microsoft"}},
	}
	got := sharedEntityNames(byArticle, []string{"a1", "a2"})
	assert.Empty(t, got)
}

func TestSharedEntityNames_EmptyIDs(t *testing.T) {
	assert.Nil(t, sharedEntityNames(nil, nil))
}

func TestFormatHistoricalContext_NoContextNoParent(t *testing.T) {
	got := formatHistoricalContext(nil, core.ContinuityResult{})
	assert.Equal(t, "", got)
}

func TestFormatHistoricalContext_NoCandidatesButParent(t *testing.T) {
	got := formatHistoricalContext(nil, core.ContinuityResult{IsContinuation: true, ParentStoryID: "s1"})
	assert.Contains(t, got, "s1")
}

func TestFormatHistoricalContext_RendersCandidates(t *testing.T) {
	candidates := []core.HistoricalCandidate{{StoryID: "s1", Title: "Fed hikes rates", EssenceText: "policy tightening"}}
	got := formatHistoricalContext(candidates, story.NoParent)
	assert.Contains(t, got, "Fed hikes rates")
	assert.Contains(t, got, "policy tightening")
}
