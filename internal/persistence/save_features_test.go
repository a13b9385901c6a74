package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storyengine/internal/core"
)

func TestFeatureStatus_SuccessRequiresBothEmbeddingAndEntities(t *testing.T) {
	enriched := core.EnrichedArticle{
		Embedding: []float64{0.1, 0.2},
		Entities:  map[string][]string{"ORG": {"Federal Reserve"}},
	}
	assert.Equal(t, core.StatusSuccess, featureStatus(enriched))
}

func TestFeatureStatus_PartialWithOnlyEmbedding(t *testing.T) {
	enriched := core.EnrichedArticle{Embedding: []float64{0.1, 0.2}}
	assert.Equal(t, core.StatusPartial, featureStatus(enriched))
}

func TestFeatureStatus_PartialWithOnlyEntities(t *testing.T) {
	enriched := core.EnrichedArticle{Entities: map[string][]string{"ORG": {"Federal Reserve"}}}
	assert.Equal(t, core.StatusPartial, featureStatus(enriched))
}

func TestFeatureStatus_FailedWithNeither(t *testing.T) {
	enriched := core.EnrichedArticle{}
	assert.Equal(t, core.StatusFailed, featureStatus(enriched))
}

func TestFeatureStatus_EmptyEntityListsDoNotCount(t *testing.T) {
	enriched := core.EnrichedArticle{
		Embedding: []float64{0.1},
		Entities:  map[string][]string{"ORG": {}},
	}
	assert.Equal(t, core.StatusPartial, featureStatus(enriched))
}
