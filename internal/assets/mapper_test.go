package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMappingRules(t *testing.T, yamlBody string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "asset_rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))
	return path
}

const mappingRuleFile = `
rules:
  - entity_type: ORG
    synonyms: ["federal reserve", "the fed"]
    assets: ["DXY", "US10Y"]
  - entity_type: GPE
    synonyms: ["china"]
    assets: ["CNH"]
`

func TestMapCandidates_MatchesAndDedups(t *testing.T) {
	m, err := LoadMapper(writeMappingRules(t, mappingRuleFile))
	require.NoError(t, err)

	got := m.MapCandidates(map[string][]string{
		"ORG": {"Federal Reserve"},
		"GPE": {"China"},
	})
	assert.Equal(t, []string{"CNH", "DXY", "US10Y"}, got)
}

func TestMapCandidates_NoMatchingEntityType(t *testing.T) {
	m, err := LoadMapper(writeMappingRules(t, mappingRuleFile))
	require.NoError(t, err)

	got := m.MapCandidates(map[string][]string{"PERSON": {"Jerome Powell"}})
	assert.Empty(t, got)
}

func TestMapCandidates_CaseInsensitiveBothDirections(t *testing.T) {
	m, err := LoadMapper(writeMappingRules(t, mappingRuleFile))
	require.NoError(t, err)

	got := m.MapCandidates(map[string][]string{"ORG": {"the FED chair spoke"}})
	assert.ElementsMatch(t, []string{"DXY", "US10Y"}, got)

	got = m.MapCandidates(map[string][]string{"ORG": {"FED"}})
	assert.ElementsMatch(t, []string{"DXY", "US10Y"}, got)
}
