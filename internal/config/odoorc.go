package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// OdooRCEnv is the environment variable naming the odoo.rc file.
const OdooRCEnv = "ODOO_RC"

const (
	odooOptionsSection = "options"
	addonsPathKey      = "addons_path"
	enterpriseSuffix   = "/enterprise"
)

var (
	// ErrNoOdooRC is returned when neither a path nor ODOO_RC is set.
	ErrNoOdooRC = errors.New("no enterprise or odoo.rc path supplied, and the " + OdooRCEnv + " environment variable is not set")

	// ErrNoAddonsPath is returned when odoo.rc has no [options] addons_path.
	ErrNoAddonsPath = errors.New("odoo.rc does not contain an addons_path key")

	// ErrNoEnterpriseAddons is returned when no addons_path entry ends in /enterprise.
	ErrNoEnterpriseAddons = errors.New("no 'enterprise' folder in addons_path")
)

// ResolveOdooRCPath returns path, or the ODOO_RC environment variable when
// path is empty.
func ResolveOdooRCPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if env := os.Getenv(OdooRCEnv); env != "" {
		return env, nil
	}
	return "", ErrNoOdooRC
}

// EnterprisePathFromOdooRC reads the odoo.rc file at path and returns the
// first addons_path entry ending in /enterprise.
func EnterprisePathFromOdooRC(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("odoo configuration file not found at %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("odoo configuration file %s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading odoo configuration file: %w", err)
	}

	enterprise, err := EnterprisePathFromBytes(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return enterprise, nil
}

// EnterprisePathFromBytes parses odoo.rc content and returns the first
// addons_path entry ending in /enterprise (a trailing slash is tolerated).
func EnterprisePathFromBytes(data []byte) (string, error) {
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return "", fmt.Errorf("parsing odoo configuration: %w", err)
	}

	sec, err := f.GetSection(odooOptionsSection)
	if err != nil || !sec.HasKey(addonsPathKey) {
		return "", ErrNoAddonsPath
	}

	for _, p := range sec.Key(addonsPathKey).Strings(",") {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if strings.HasSuffix(p, enterpriseSuffix) {
			return p, nil
		}
	}
	return "", ErrNoEnterpriseAddons
}

// ResolveEnterprisePath returns cfg.EnterprisePath when set, otherwise the
// enterprise entry of the odoo.rc named by cfg.OdooRC or ODOO_RC.
func ResolveEnterprisePath(cfg *Config) (string, error) {
	if p := StringValue(cfg.EnterprisePath); p != "" {
		return p, nil
	}
	rc, err := ResolveOdooRCPath(StringValue(cfg.OdooRC))
	if err != nil {
		return "", err
	}
	return EnterprisePathFromOdooRC(rc)
}
