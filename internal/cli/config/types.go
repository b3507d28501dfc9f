// Package config provides configuration management for the csvgroup CLI.
//
// Configuration is resolved from four layers, highest priority first:
// command-line flags, CSVGROUP_* environment variables, a csvgroup.yaml
// config file, and built-in defaults.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hartfield/csvgroup/internal/cli/output"
)

// Config holds all CLI configuration options.
type Config struct {
	InputDir     string `koanf:"input_dir"`
	OutputDir    string `koanf:"output_dir"`
	OutputPrefix string `koanf:"output_prefix"`
	GroupBy      string `koanf:"group_by"`
	OutputFormat string `koanf:"output"`
	Verbose      bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultInputDir     = "."
	DefaultOutputDir    = "out"
	DefaultOutputPrefix = "grouped"
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(output.ValidModes, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (want one of %s)",
			c.OutputFormat, strings.Join(output.ValidModes, ", "))
	}
	return nil
}
