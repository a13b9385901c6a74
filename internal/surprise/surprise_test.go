package surprise

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyengine/internal/core"
)

const synonymFile = `
synonyms:
  inflation: ["cpi", "consumer price"]
  interest: ["rate", "fed"]
stopwords:
  - data
  - report
`

func writeSynonyms(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "surprise_synonyms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

type fakeFinder struct {
	events []core.EconomicEvent
	err    error
}

func (f fakeFinder) FindEvents(ctx context.Context, start, end time.Time, keywords []string) ([]core.EconomicEvent, error) {
	return f.events, f.err
}

func float64Ptr(v float64) *float64 { return &v }

func TestScore_NoMatchingEvents(t *testing.T) {
	s, err := LoadScorer(writeSynonyms(t, synonymFile), fakeFinder{})
	require.NoError(t, err)

	_, ok, err := s.Score(context.Background(), "INFLATION_DATA", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScore_ComputesNormalizedSurprise(t *testing.T) {
	now := time.Now()
	finder := fakeFinder{events: []core.EconomicEvent{
		{EventTime: now, ActualValue: float64Ptr(3.5), ForecastValue: float64Ptr(3.0)},
	}}
	s, err := LoadScorer(writeSynonyms(t, synonymFile), finder)
	require.NoError(t, err)

	score, ok, err := s.Score(context.Background(), "INFLATION_DATA", now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 0.5/3.0, score, 1e-9)
}

func TestScore_ClampsToOne(t *testing.T) {
	now := time.Now()
	finder := fakeFinder{events: []core.EconomicEvent{
		{EventTime: now, ActualValue: float64Ptr(10.0), ForecastValue: float64Ptr(1.0)},
	}}
	s, err := LoadScorer(writeSynonyms(t, synonymFile), finder)
	require.NoError(t, err)

	score, ok, err := s.Score(context.Background(), "INFLATION_DATA", now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1.0, score)
}

func TestScore_MissingActualOrForecastYieldsNoResult(t *testing.T) {
	now := time.Now()
	finder := fakeFinder{events: []core.EconomicEvent{
		{EventTime: now, ActualValue: nil, ForecastValue: float64Ptr(1.0)},
	}}
	s, err := LoadScorer(writeSynonyms(t, synonymFile), finder)
	require.NoError(t, err)

	_, ok, err := s.Score(context.Background(), "INFLATION_DATA", now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpandKeywords_StopwordsDroppedSynonymsAdded(t *testing.T) {
	s, err := LoadScorer(writeSynonyms(t, synonymFile), fakeFinder{})
	require.NoError(t, err)

	got := s.expandKeywords("INFLATION_DATA")
	assert.Contains(t, got, "inflation")
	assert.Contains(t, got, "cpi")
	assert.Contains(t, got, "consumer price")
	assert.NotContains(t, got, "data")
}
