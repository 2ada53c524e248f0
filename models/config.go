// Package models defines data structures for configuration and processing records.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultInputDir  = "raw_repos"
	DefaultOutputDir = "processed_repos"
	DefaultModel     = "gpt-3.5-turbo"
	DefaultKeywords  = 25
)

// ProcessConfig holds runtime configuration for the process command.
// Values come from CLI flags, environment variables, or an optional YAML file.
type ProcessConfig struct {
	InputDir     string       `yaml:"input_dir"`
	OutputDir    string       `yaml:"output_dir"`
	WorkerCount  int          `yaml:"workers"`
	Model        string       `yaml:"model"`
	FilepathBase FilepathBase `yaml:"filepath_base"`
	Exclude      []string     `yaml:"exclude,omitempty"`
	Keywords     int          `yaml:"keywords"`
}

// NormalizeConfig holds runtime configuration for the fix-filepaths command.
type NormalizeConfig struct {
	OutputDir string
	DryRun    bool
}

// DefaultProcessConfig returns a config populated with built-in defaults.
func DefaultProcessConfig() *ProcessConfig {
	return &ProcessConfig{
		InputDir:     DefaultInputDir,
		OutputDir:    DefaultOutputDir,
		WorkerCount:  DefaultWorkerCount(),
		Model:        DefaultModel,
		FilepathBase: FilepathBaseUnit,
		Keywords:     DefaultKeywords,
	}
}

// DefaultWorkerCount is the available hardware parallelism, never below 1.
func DefaultWorkerCount() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}

// LoadConfig reads a YAML config file on top of the built-in defaults.
// Keys missing from the file keep their default value.
func LoadConfig(path string) (*ProcessConfig, error) {
	cfg := DefaultProcessConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config and clamps the worker count to at least 1.
func (c *ProcessConfig) Validate() error {
	if strings.TrimSpace(c.InputDir) == "" {
		return errors.New("input dir is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("output dir is required")
	}
	if c.WorkerCount < 1 {
		c.WorkerCount = 1
	}
	if c.Keywords < 0 {
		return fmt.Errorf("keywords must be >= 0, got %d", c.Keywords)
	}
	if _, err := ParseFilepathBase(string(c.FilepathBase)); err != nil {
		return err
	}

	in, err := filepath.Abs(c.InputDir)
	if err != nil {
		return fmt.Errorf("failed to resolve input dir: %w", err)
	}
	out, err := filepath.Abs(c.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output dir: %w", err)
	}
	if in == out {
		return fmt.Errorf("input and output dir must differ: %s", in)
	}
	if rel, err := filepath.Rel(in, out); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output dir %s must not be inside input dir %s", out, in)
	}
	return nil
}
