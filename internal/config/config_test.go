package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "data/bank_data.csv", cfg.Churn.DataPath)
	assert.Equal(t, "plot_figures/eda", cfg.Churn.EDADir)
	assert.Equal(t, "plot_figures/results", cfg.Churn.ResultsDir)
	assert.Equal(t, "models", cfg.Churn.ModelsDir)
	assert.Equal(t, int64(42), cfg.Churn.Seed)
	assert.InDelta(t, 0.3, cfg.Churn.TestSize, 0.001)
	assert.Equal(t, 5, cfg.Churn.CVFolds)
	assert.Equal(t, []int{50, 100}, cfg.Churn.Grid.NEstimators)
	assert.Equal(t, []string{"gini", "entropy"}, cfg.Churn.Grid.Criterion)
	assert.Equal(t, 3000, cfg.Churn.Logistic.MaxIter)
	assert.Equal(t, "local", cfg.Artifact.Backend)
	assert.Equal(t, "artifacts", cfg.Artifact.Root)
	assert.Equal(t, ":8090", cfg.Registry.Addr)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: console
churn:
  seed: 7
  results_dir: out/results
artifact:
  backend: http
  url: http://registry:8090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, int64(7), cfg.Churn.Seed)
	assert.Equal(t, "out/results", cfg.Churn.ResultsDir)
	assert.Equal(t, "http", cfg.Artifact.Backend)
	assert.Equal(t, "http://registry:8090", cfg.Artifact.URL)
	// Defaults still apply for unset values
	assert.Equal(t, "models", cfg.Churn.ModelsDir)
}

func TestLoadExplicitPathMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	t.Setenv("MLSTEPS_CHURN_MODELS_DIR", "/tmp/m")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/m", cfg.Churn.ModelsDir)
}
