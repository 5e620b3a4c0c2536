package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/coffeestats/config"
	"github.com/ezoic/coffeestats/dataset"
)

// execute runs a fresh command tree with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// writeConfig saves a config using the bundled datasets and returns its path.
func writeConfig(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Yearly.Path = filepath.Join("..", "data", "yearly_technification.csv")
	cfg.Regional.Path = filepath.Join("..", "data", "regional_production.csv")
	cfg.Output.Dir = filepath.Join(dir, "output")
	cfg.Output.Color = false
	cfg.LogLevel = "error"
	path := filepath.Join(dir, "coffeestats.yaml")
	require.NoError(t, config.Save(cfg, path))
	return path, cfg
}

func TestConfigShow_AppliesFlags(t *testing.T) {
	path, _ := writeConfig(t)

	out, err := execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "seed: 42")

	out, err = execute(t, "--config", path, "--seed", "7", "--output-dir", "elsewhere", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "seed: 7")
	assert.Contains(t, out, "dir: elsewhere")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "coffeestats.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default configuration")

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), got)

	_, err = execute(t, "config", "init", path)
	assert.Error(t, err)
	_, err = execute(t, "config", "init", "--force", path)
	assert.NoError(t, err)
}

func TestRun_NoCharts(t *testing.T) {
	path, cfg := writeConfig(t)

	out, err := execute(t, "--config", path, "run", "--no-charts")
	require.NoError(t, err)
	assert.Contains(t, out, "EXECUTIVE SUMMARY")
	assert.Contains(t, out, "REGIONAL ANALYSIS")

	results, err := dataset.Load(filepath.Join(cfg.Output.Dir, cfg.Yearly.ResultsTable), "technification_level")
	require.NoError(t, err)
	assert.Equal(t, 15, results.NRows())

	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "kmeans_clusters.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestSelectKAndDescribe(t *testing.T) {
	path, _ := writeConfig(t)

	out, err := execute(t, "--config", path, "select-k")
	require.NoError(t, err)
	assert.Contains(t, out, "silhouette")

	out, err = execute(t, "--config", path, "describe")
	require.NoError(t, err)
	assert.Contains(t, out, "productivity_bags_ha")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "config", "show")
	assert.Error(t, err)
}
