package config

import (
	"errors"
	"fmt"
)

// Builder constructs a Config by layering overrides on top of defaults.
type Builder struct {
	overrides []*Config
}

// NewBuilder creates a new configuration builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add adds a configuration override. Overrides are applied in order:
// later overrides take precedence over earlier ones.
func (b *Builder) Add(override *Config) *Builder {
	if override != nil {
		b.overrides = append(b.overrides, override)
	}
	return b
}

// Build constructs the final configuration by starting with defaults,
// applying all overrides and validating.
func (b *Builder) Build() (*Config, error) {
	cfg := CreateDefaultConfiguration()

	for _, override := range b.overrides {
		mergeConfig(cfg, override)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeConfig applies non-nil fields from src to dst.
func mergeConfig(dst, src *Config) {
	if src.Branch != nil {
		dst.Branch = src.Branch
	}
	if src.EnterprisePath != nil {
		dst.EnterprisePath = src.EnterprisePath
	}
	if src.CommunityPath != nil {
		dst.CommunityPath = src.CommunityPath
	}
	if src.OdooRC != nil {
		dst.OdooRC = src.OdooRC
	}
	if src.DryRun != nil {
		dst.DryRun = src.DryRun
	}
	if src.SearchOutOfOrder != nil {
		dst.SearchOutOfOrder = src.SearchOutOfOrder
	}
	if src.AlwaysAfter != nil {
		dst.AlwaysAfter = src.AlwaysAfter
	}
	if src.AlwaysBefore != nil {
		dst.AlwaysBefore = src.AlwaysBefore
	}
	if src.LineageDepth != nil {
		dst.LineageDepth = src.LineageDepth
	}
	if src.Window != nil {
		dst.Window = src.Window
	}
}

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	if cfg.LineageDepth != nil && *cfg.LineageDepth <= 0 {
		return fmt.Errorf("lineage-depth must be positive, got %d", *cfg.LineageDepth)
	}
	if cfg.Window != nil && *cfg.Window <= 0 {
		return fmt.Errorf("window must be positive, got %d", *cfg.Window)
	}
	if BoolValue(cfg.AlwaysAfter) && BoolValue(cfg.AlwaysBefore) {
		return errors.New("always-after and always-before are mutually exclusive")
	}
	return nil
}
