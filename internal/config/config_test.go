package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Contains(t, cfg.NullTokens, "NULL")
	assert.Contains(t, cfg.NullTokens, "None")
	assert.Equal(t, []string{"description"}, cfg.IgnoredColumns)
	assert.Equal(t, "history", cfg.HistoryFlag)
	assert.Contains(t, cfg.RequiredColumns, "recency_flag")
	assert.Equal(t, "reports", cfg.ReportDir)
	assert.Equal(t, "tabdiff_runs.db", cfg.HistoryDB)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "tabdiff.yaml")
	cfg := Default()
	cfg.HistoryFlag = "archived"
	cfg.ReportDir = "out"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabdiff.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report_dir: elsewhere\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", cfg.ReportDir)
	assert.Equal(t, Default().NullTokens, cfg.NullTokens)
	assert.Equal(t, "history", cfg.HistoryFlag)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("null_tokens: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDiffOptions(t *testing.T) {
	cfg := Default()
	opts := cfg.DiffOptions()
	assert.Equal(t, cfg.NullTokens, opts.NullTokens)
	assert.Equal(t, cfg.IgnoredColumns, opts.IgnoredColumns)
	assert.Equal(t, cfg.HistoryFlag, opts.HistoryFlag)
	assert.Equal(t, cfg.KeyColumns, opts.KeyColumns)
}
