package entities

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGazetteer(t *testing.T, yamlBody string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gazetteer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))
	return path
}

func TestLoadRecognizer(t *testing.T) {
	path := writeGazetteer(t, `
rules:
  - type: ORG
    name: "Federal Reserve"
    synonyms: ["federal reserve", "the fed"]
`)
	r, err := LoadRecognizer(path)
	require.NoError(t, err)
	require.NotNil(t, r)
}

func TestLoadRecognizer_MissingFile(t *testing.T) {
	_, err := LoadRecognizer(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestExtract_GazetteerMatch(t *testing.T) {
	path := writeGazetteer(t, `
rules:
  - type: ORG
    name: "Federal Reserve"
    synonyms: ["federal reserve", "the fed"]
  - type: GPE
    name: "China"
    synonyms: ["china"]
`)
	r, err := LoadRecognizer(path)
	require.NoError(t, err)

	got := r.Extract("The Fed raised rates while China's exports slowed.")
	assert.Equal(t, []string{"Federal Reserve"}, got["ORG"])
	assert.Equal(t, []string{"China"}, got["GPE"])
}

func TestExtract_NoDuplicateMentions(t *testing.T) {
	path := writeGazetteer(t, `
rules:
  - type: ORG
    name: "Federal Reserve"
    synonyms: ["federal reserve", "the fed"]
`)
	r, err := LoadRecognizer(path)
	require.NoError(t, err)

	got := r.Extract("The Fed spoke. Later, the Federal Reserve clarified.")
	assert.Equal(t, []string{"Federal Reserve"}, got["ORG"])
}

func TestExtract_MonetaryAndPercentage(t *testing.T) {
	path := writeGazetteer(t, "rules: []\n")
	r, err := LoadRecognizer(path)
	require.NoError(t, err)

	got := r.Extract("Revenue grew by $3.2 billion, a jump of 12.5%.")
	require.Len(t, got["monetary"], 1)
	assert.Contains(t, got["monetary"][0], "3.2")
	require.Len(t, got["percentage"], 1)
	assert.Contains(t, got["percentage"][0], "12.5%")
}

func TestExtract_ShortMentionsDropped(t *testing.T) {
	path := writeGazetteer(t, `
rules:
  - type: TICKER
    name: "AB"
    synonyms: ["ab"]
`)
	r, err := LoadRecognizer(path)
	require.NoError(t, err)

	got := r.Extract("ab appears here")
	assert.Empty(t, got["TICKER"])
}

func TestExtract_NoMatches(t *testing.T) {
	path := writeGazetteer(t, `
rules:
  - type: ORG
    name: "Federal Reserve"
    synonyms: ["federal reserve"]
`)
	r, err := LoadRecognizer(path)
	require.NoError(t, err)

	got := r.Extract("A quiet day with no notable headlines.")
	assert.Empty(t, got)
}
