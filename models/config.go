package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultMaxConn caps simultaneous fetch connections. Too many in-flight
// connections degrade the local stack and make remote servers unhappy.
const DefaultMaxConn = 8

// AppConfig holds runtime configuration for a download run. Values come
// from CLI flags, optionally seeded from a YAML config file.
type AppConfig struct {
	URLs       []string `yaml:"urls"`
	MaxConn    int      `yaml:"max_conn"`
	OutputDir  string   `yaml:"output_dir"`
	MergedName string   `yaml:"merged"`
	InlineTOC  bool     `yaml:"inline_toc"`
	NoHistory  bool     `yaml:"no_history"`
}

// Merged reports whether all articles should be combined into one book.
func (c *AppConfig) Merged() bool {
	return c.MergedName != ""
}

// Validate checks the invariants the pipeline and packaging stages rely on.
func (c *AppConfig) Validate() error {
	if c.MaxConn < 1 {
		return fmt.Errorf("max-conn must be a positive integer, got %d", c.MaxConn)
	}
	if len(c.URLs) == 0 {
		return fmt.Errorf("no urls were provided")
	}
	return nil
}

// LoadConfig reads an AppConfig from a YAML file. Missing fields keep
// their zero values so CLI flags can fill them in afterwards.
func LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var config AppConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &config, nil
}
