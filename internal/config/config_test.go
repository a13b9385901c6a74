package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_MatchesDocumentedDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 0.50, cfg.Scoring.SemanticWeight)
	assert.Equal(t, 0, cfg.Pipeline.MaxClusters)
}

func TestLoad_OverridesFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storyengine.yaml")
	body := `
database:
  connection_string: "postgres://test/db"
app:
  log_level: "debug"
scoring:
  semantic_weight: 0.7
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "postgres://test/db", cfg.Database.ConnectionString)
	assert.Equal(t, 0.7, cfg.Scoring.SemanticWeight)
	// Unset fields keep their defaults.
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
}

func TestLoad_CleansFilePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storyengine.yaml")
	body := `
database:
  connection_string: "postgres://test/db"
files:
  gazetteer_path: "rules//gazetteer.yaml"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("rules//gazetteer.yaml"), cfg.Files.GazetteerPath)
}
