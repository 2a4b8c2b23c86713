// Package config provides YAML configuration loading, defaults, layered
// merging and odoo.rc discovery for go-matchcommits.
package config

// Config is the root configuration. All fields are pointers to support
// merge semantics during configuration building.
type Config struct {
	// Branch is the target branch searched from. Default "master".
	Branch *string `yaml:"branch"`

	// EnterprisePath is the enterprise repository. When unset it is read
	// from the odoo.rc addons_path.
	EnterprisePath *string `yaml:"enterprise-path"`

	// CommunityPath is the community repository. Default ".".
	CommunityPath *string `yaml:"community-path"`

	// OdooRC is the odoo.rc file consulted for EnterprisePath. Falls back to
	// the ODOO_RC environment variable.
	OdooRC *string `yaml:"odoo-rc"`

	DryRun           *bool `yaml:"dry-run"`
	SearchOutOfOrder *bool `yaml:"search-out-of-order"`
	AlwaysAfter      *bool `yaml:"always-after"`
	AlwaysBefore     *bool `yaml:"always-before"`

	// LineageDepth bounds the reference out-of-order check.
	LineageDepth *int `yaml:"lineage-depth"`

	// Window is how many commits are searched past the reference time.
	Window *int `yaml:"window"`
}

// StringValue returns *p, or "" when p is nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// BoolValue returns *p, or false when p is nil.
func BoolValue(p *bool) bool {
	return p != nil && *p
}
