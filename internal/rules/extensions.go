package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/packguard/packguard/internal/types"
)

// ExtensionRule is one compiled file-extension detector. The extension is
// stored lower-cased and without the leading dot.
type ExtensionRule struct {
	Extension     string
	Category      string
	Severity      types.Severity
	RiskLevel     types.RiskLevel
	CheckContent  bool
	Description   string
	FileTypeLabel string
	Platforms     []string
	CommonUses    []string
}

// ExtensionRuleSet is a compiled, read-only set of extension rules keyed by
// lower-cased extension. Safe to share across concurrent scans.
type ExtensionRuleSet struct {
	Version  string
	Name     string
	Preset   string
	Warnings []string

	rules map[string]ExtensionRule
}

// Lookup returns the rule for an extension (with or without leading dot),
// matched case-insensitively.
func (s *ExtensionRuleSet) Lookup(ext string) (ExtensionRule, bool) {
	r, ok := s.rules[normalizeExt(ext)]
	return r, ok
}

// Len reports the number of enabled extensions.
func (s *ExtensionRuleSet) Len() int { return len(s.rules) }

// Extensions returns the enabled extensions in sorted order.
func (s *ExtensionRuleSet) Extensions() []string {
	return sortedKeys(s.rules)
}

// LoadExtensionRulesFile reads and compiles an extension-rule document from disk.
func LoadExtensionRulesFile(path, preset string) (*ExtensionRuleSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceInvalid, err)
	}
	return LoadExtensionRules(b, preset)
}

// LoadExtensionRules compiles an extension-rule document. A preset name
// replaces the enabled set with exactly the preset's extensions; the empty
// preset enables every extension in the document. An unknown preset name
// fails with ErrPresetNotFound.
func LoadExtensionRules(doc []byte, preset string) (*ExtensionRuleSet, error) {
	var d extensionDocument
	if err := yaml.Unmarshal(doc, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceInvalid, err)
	}
	if err := validateHeader(d.Version, d.Name, d.Extensions != nil, "extension-rule"); err != nil {
		return nil, err
	}

	set := &ExtensionRuleSet{
		Version: d.Version,
		Name:    d.Name,
		Preset:  preset,
		rules:   map[string]ExtensionRule{},
	}

	var enabled map[string]bool
	if preset != "" {
		p, ok := d.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, preset)
		}
		enabled = map[string]bool{}
		for _, e := range p.EnabledExtensions {
			enabled[normalizeExt(e)] = true
		}
	}

	for _, rawExt := range sortedKeys(d.Extensions) {
		entry := d.Extensions[rawExt]
		ext := normalizeExt(rawExt)
		if enabled != nil && !enabled[ext] {
			continue
		}
		if _, dup := set.rules[ext]; dup {
			set.Warnings = append(set.Warnings, fmt.Sprintf("duplicate extension %q dropped", rawExt))
			continue
		}
		set.rules[ext] = ExtensionRule{
			Extension:     ext,
			Category:      entry.Category,
			Severity:      entry.Severity,
			RiskLevel:     entry.RiskLevel,
			CheckContent:  entry.CheckContent,
			Description:   entry.Description,
			FileTypeLabel: entry.Metadata.FileType,
			Platforms:     entry.Metadata.Platform,
			CommonUses:    entry.Metadata.CommonUses,
		}
	}
	return set, nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
