package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFromFile reads and parses a go-matchcommits configuration file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses configuration from raw YAML bytes.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// FileNames lists the files searched for configuration in order.
var FileNames = []string{
	".matchcommits.yml",
	"matchcommits.yml",
}

// FindFile returns the first of FileNames present in dir, or "".
func FindFile(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load builds the configuration from defaults, the file at path (or the one
// FindFile locates in dir when path is empty) and then overrides.
func Load(path, dir string, overrides ...*Config) (*Config, error) {
	builder := NewBuilder()

	if path == "" {
		path = FindFile(dir)
	}
	if path != "" {
		userCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		builder.Add(userCfg)
	}

	for _, o := range overrides {
		builder.Add(o)
	}
	return builder.Build()
}
