// Package config loads scan settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// DefaultOutputDir is where reports are written when nothing else is set
const DefaultOutputDir = "analysis"

// Config holds scan settings
type Config struct {
	// OutputDir receives report.json, findings.md and findings.sarif
	OutputDir string `yaml:"output_dir"`
	// Browsers restricts the scan to these browsers; empty means all
	Browsers []string `yaml:"browsers"`
	// Workers bounds concurrent evaluation; 0 means one per CPU
	Workers int `yaml:"workers"`
	// SARIF also writes findings.sarif
	SARIF bool `yaml:"sarif"`
	// HistoryDB is a SQLite file recording each run; empty disables history
	HistoryDB string `yaml:"history_db"`
	// ExtraRoots are additional Chromium-style user-data directories
	ExtraRoots []string `yaml:"extra_roots"`
	// Debug enables debug logging
	Debug bool `yaml:"debug"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{OutputDir: DefaultOutputDir}
}

// Load reads path over the defaults. A missing file is an error only when
// required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}
	return nil
}

// WorkerCount resolves Workers, using one per CPU when unset
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}
