// Package config loads optional packguard configuration files. Precedence is
// CLI flags over local file over global file; pointer fields distinguish
// "unset" from zero values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape.
type FileConfig struct {
	Preset         *string `yaml:"preset"`
	ContentRules   *string `yaml:"content_rules"`
	ExtensionRules *string `yaml:"extension_rules"`
	Include        *string `yaml:"include"`
	Exclude        *string `yaml:"exclude"`
	TempRoot       *string `yaml:"temp_root"`
	KeepScratch    *bool   `yaml:"keep_scratch"`
	NoColor        *bool   `yaml:"no_color"`
	JSON           *bool   `yaml:"json"`
	Audit          *bool   `yaml:"audit"`
	AuditPath      *string `yaml:"audit_path"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches the working directory for a local config file.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".packguard.yml", ".packguard.yaml", "packguard.yml", "packguard.yaml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the user config from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "packguard", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// Merge overlays other on top of c, taking other's set fields.
func (c FileConfig) Merge(other FileConfig) FileConfig {
	out := c
	if other.Preset != nil {
		out.Preset = other.Preset
	}
	if other.ContentRules != nil {
		out.ContentRules = other.ContentRules
	}
	if other.ExtensionRules != nil {
		out.ExtensionRules = other.ExtensionRules
	}
	if other.Include != nil {
		out.Include = other.Include
	}
	if other.Exclude != nil {
		out.Exclude = other.Exclude
	}
	if other.TempRoot != nil {
		out.TempRoot = other.TempRoot
	}
	if other.KeepScratch != nil {
		out.KeepScratch = other.KeepScratch
	}
	if other.NoColor != nil {
		out.NoColor = other.NoColor
	}
	if other.JSON != nil {
		out.JSON = other.JSON
	}
	if other.Audit != nil {
		out.Audit = other.Audit
	}
	if other.AuditPath != nil {
		out.AuditPath = other.AuditPath
	}
	return out
}

// Str returns the pointed-to string or a fallback.
func Str(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

// Bool returns the pointed-to bool or a fallback.
func Bool(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}
