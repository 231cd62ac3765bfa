package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pr-analytics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
repositories:
  - owner: acme
    name: widgets
  - owner: acme
    name: gadgets
    display_name: Gadgets Team
analysis_year: 2025
output_dir: ./out
workers: 8
top_contributors: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Repositories, 2)
	assert.Equal(t, "acme/widgets", cfg.Repositories[0].Slug())
	assert.Equal(t, "acme/widgets", cfg.Repositories[0].Label())
	assert.Equal(t, "Gadgets Team", cfg.Repositories[1].Label())
	assert.Equal(t, 2025, cfg.AnalysisYear)
	assert.Equal(t, "./out", cfg.OutputDir)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 5, cfg.TopContributors)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Repositories)
	assert.Equal(t, time.Now().UTC().Year(), cfg.AnalysisYear)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultTopContributors, cfg.TopContributors)
}

func TestLoad_AppliesDefaultsToPartialFile(t *testing.T) {
	path := writeConfig(t, `
repositories:
  - owner: acme
    name: widgets
analysis_year: 2024
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2024, cfg.AnalysisYear)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultTopContributors, cfg.TopContributors)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "repositories: [unclosed")

	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_MissingOwnerOrName(t *testing.T) {
	path := writeConfig(t, `
repositories:
  - owner: acme
`)

	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing owner or name")
}

func TestAnalysisWindow(t *testing.T) {
	cfg := &Config{AnalysisYear: 2025}

	from, to := cfg.AnalysisWindow()
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), to)
	assert.True(t, from.Before(to))
}
