package config

import (
	"strings"

	"github.com/sdejongh/sdverify/pkg/compare"
	"github.com/sdejongh/sdverify/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Filter  FilterConfig  `yaml:"filter"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Journal JournalConfig `yaml:"journal"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// FilterConfig holds the camera side-file exclusion settings
type FilterConfig struct {
	Extensions []string `yaml:"extensions"` // e.g. ".THM", ".LRV"
	Exclude    []string `yaml:"exclude"`    // extra glob patterns on file names
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Color    bool   `yaml:"color"`    // Colorize human output
	Progress bool   `yaml:"progress"` // Show purge progress bar
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json", "text", or "logfmt"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = stderr when verbose)
}

// JournalConfig holds the purge journal settings
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // empty = next to the config file
}

// MetricsConfig holds the Prometheus textfile settings
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"` // empty = disabled
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Filter: FilterConfig{
			Extensions: append([]string(nil), compare.DefaultExcludedExtensions...),
		},
		Output: OutputConfig{
			Format:   "human",
			Color:    true,
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Format:  "text",
			Level:   "info",
			File:    "",
		},
		Journal: JournalConfig{
			Enabled: true,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	for _, ext := range c.Filter.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" || ext == "." || strings.ContainsAny(ext, `/\`) {
			return &models.ValidationError{
				Field:   "filter.extensions",
				Message: "must be non-empty file extensions like '.THM'",
			}
		}
	}

	if _, err := compare.NewFilter(nil, c.Filter.Exclude); err != nil {
		return &models.ValidationError{
			Field:   "filter.exclude",
			Message: err.Error(),
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true, "logfmt": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json', 'text', or 'logfmt'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}

// BuildFilter returns the exclusion filter described by the configuration
func (c *Config) BuildFilter() (*compare.Filter, error) {
	return compare.NewFilter(c.Filter.Extensions, c.Filter.Exclude)
}
