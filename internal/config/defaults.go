package config

import "github.com/MyCarrier-DevOps/go-matchcommits/internal/match"

// CreateDefaultConfiguration returns a Config with all defaulted values
// populated. Repository paths stay nil: they are discovered at run time.
func CreateDefaultConfiguration() *Config {
	return &Config{
		Branch:           StringPtr("master"),
		CommunityPath:    StringPtr("."),
		DryRun:           BoolPtr(false),
		SearchOutOfOrder: BoolPtr(false),
		AlwaysAfter:      BoolPtr(false),
		AlwaysBefore:     BoolPtr(false),
		LineageDepth:     IntPtr(match.DefaultLineageDepth),
		Window:           IntPtr(match.DefaultWindow),
	}
}
