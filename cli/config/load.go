package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a prospector.yaml file, expands ${VAR} and ${VAR:-default}
// references against the environment, and unmarshals into a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("prospector config file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read prospector config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return &cfg, nil
}
