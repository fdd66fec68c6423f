// Package config holds the file-backed configuration for the comparison
// toolkit: token lists, column roles, and output locations.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tabdiff/internal/diff"
)

type Config struct {
	// NullTokens are canonicalized to missing in tactic_id/tactic_nm.
	NullTokens []string `yaml:"null_tokens"`
	// IgnoredColumns are excluded from every comparison and from column
	// difference reporting.
	IgnoredColumns []string `yaml:"ignored_columns"`
	// HistoryFlag is the recency_flag literal selecting comparable rows.
	HistoryFlag string `yaml:"history_flag"`
	// RequiredColumns must exist in both files before a comparison starts.
	RequiredColumns []string `yaml:"required_columns"`
	// KeyColumns are recommended; their absence is reported but not fatal.
	KeyColumns []string `yaml:"key_columns"`
	// ReportDir receives the exported CSV reports.
	ReportDir string `yaml:"report_dir"`
	// HistoryDB is the SQLite file recording past comparison runs.
	HistoryDB string `yaml:"history_db"`
}

func Default() *Config {
	opts := diff.DefaultOptions()
	return &Config{
		NullTokens:     opts.NullTokens,
		IgnoredColumns: opts.IgnoredColumns,
		HistoryFlag:    opts.HistoryFlag,
		RequiredColumns: []string{
			diff.ColDatasetID, diff.ColTacticID, diff.ColRecencyFlag,
			diff.ColDatasetNm, diff.ColTacticNm, diff.ColChannelNm,
		},
		KeyColumns: opts.KeyColumns,
		ReportDir:  "reports",
		HistoryDB:  "tabdiff_runs.db",
	}
}

// Load reads a YAML config file. Fields left empty in the file keep their
// defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.HistoryFlag == "" {
		cfg.HistoryFlag = diff.DefaultOptions().HistoryFlag
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}

// DiffOptions maps the configuration onto comparison options.
func (c *Config) DiffOptions() diff.Options {
	return diff.Options{
		NullTokens:     c.NullTokens,
		IgnoredColumns: c.IgnoredColumns,
		HistoryFlag:    c.HistoryFlag,
		KeyColumns:     c.KeyColumns,
	}
}
