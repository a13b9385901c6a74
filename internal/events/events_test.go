package events

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, yamlBody string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "event_rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))
	return path
}

const twoRuleFile = `
rules:
  - event_type: INTEREST_RATE_DECISION
    priority: 1
    keywords:
      - "rate decision"
      - "rate hike"
    entity_requirements:
      ORG: ["Federal Reserve"]
    description: "Central bank policy rate decision"
    rationale: "matched rate keyword or Fed entity"
  - event_type: INFLATION_DATA
    priority: 2
    keywords:
      - "cpi"
      - "inflation data"
    description: "Inflation release"
    rationale: "matched CPI keyword"
`

func TestClassify_KeywordMatch(t *testing.T) {
	c, err := LoadClassifier(writeRules(t, twoRuleFile))
	require.NoError(t, err)

	got, ok := c.Classify("The Fed announced a surprise rate hike today.", nil)
	require.True(t, ok)
	assert.Equal(t, "INTEREST_RATE_DECISION", got.EventType)
}

func TestClassify_EntityRequirementMatch(t *testing.T) {
	c, err := LoadClassifier(writeRules(t, twoRuleFile))
	require.NoError(t, err)

	got, ok := c.Classify("No keyword here.", map[string][]string{"ORG": {"Federal Reserve"}})
	require.True(t, ok)
	assert.Equal(t, "INTEREST_RATE_DECISION", got.EventType)
}

func TestClassify_PriorityBreaksTies(t *testing.T) {
	c, err := LoadClassifier(writeRules(t, twoRuleFile))
	require.NoError(t, err)

	// Matches both rules; lower-priority (1) rule should win.
	got, ok := c.Classify("CPI data and a rate decision both landed today.", nil)
	require.True(t, ok)
	assert.Equal(t, "INTEREST_RATE_DECISION", got.EventType)
}

func TestClassify_NoMatch(t *testing.T) {
	c, err := LoadClassifier(writeRules(t, twoRuleFile))
	require.NoError(t, err)

	_, ok := c.Classify("A quiet trading session with no notable releases.", nil)
	assert.False(t, ok)
}
