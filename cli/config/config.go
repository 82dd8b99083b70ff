package config

import (
	"fmt"
	"time"
)

// Config represents a prospector.yaml configuration file.
// All values are optional and act as defaults for prospector run flags.
// CLI flags always override config values.
type Config struct {
	Provider    ProviderConfig    `yaml:"provider"`
	Sink        SinkConfig        `yaml:"sink"`
	Adapter     AdapterConfig     `yaml:"adapter"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
}

// ProviderConfig holds search provider defaults from the config file.
type ProviderConfig struct {
	BaseURL string   `yaml:"base_url"`
	Token   string   `yaml:"token"`
	Timeout Duration `yaml:"timeout,omitempty"`
	Retries *int     `yaml:"retries,omitempty"`
}

// SinkConfig holds item sink defaults from the config file.
// Backend selects where pushed items land: "platform" (the default)
// writes to the platform dataset API, "file" writes JSONL files
// under Path.
type SinkConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// AdapterConfig holds notification adapter defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// ConcurrencyConfig holds worker pool defaults from the config file.
// Zero values defer to the mode-specific defaults.
type ConcurrencyConfig struct {
	Items int `yaml:"items"`
	Pages int `yaml:"pages"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
