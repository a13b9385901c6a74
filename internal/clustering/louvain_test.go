package clustering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyengine/internal/core"
)

func edge(source, target string, score float64) core.GraphEdge {
	return core.GraphEdge{SourceArticleID: source, TargetArticleID: target, TotalScore: score, RunDate: time.Now()}
}

func TestCluster_NoEdgesYieldsNoClusters(t *testing.T) {
	g := NewGraphClusterer()
	clusters, err := g.Cluster(nil)
	require.NoError(t, err)
	assert.Empty(t, clusters)
}

func TestCluster_GroupsConnectedArticles(t *testing.T) {
	g := NewGraphClusterer()
	edges := []core.GraphEdge{
		edge("a1", "a2", 0.9),
		edge("a2", "a3", 0.85),
		edge("b1", "b2", 0.8),
	}
	clusters, err := g.Cluster(edges)
	require.NoError(t, err)
	require.NotEmpty(t, clusters)

	for _, c := range clusters {
		assert.GreaterOrEqual(t, len(c), 2)
	}

	var allIDs []string
	for _, c := range clusters {
		allIDs = append(allIDs, c...)
	}
	assert.ElementsMatch(t, []string{"a1", "a2", "a3", "b1", "b2"}, allIDs)
}

func TestCluster_SelfLoopIgnored(t *testing.T) {
	g := NewGraphClusterer()
	edges := []core.GraphEdge{edge("a1", "a1", 1.0)}
	clusters, err := g.Cluster(edges)
	require.NoError(t, err)
	assert.Empty(t, clusters)
}
