package rules

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/packguard/packguard/internal/types"
)

// ContentRule is one compiled regex detector. Immutable after compilation.
type ContentRule struct {
	Name        string
	Category    string
	Severity    types.Severity
	Pattern     *regexp.Regexp
	Description string
}

// ContentRuleSet is a compiled, read-only set of content rules. It is safe
// to share across concurrent scans.
type ContentRuleSet struct {
	Version  string
	Name     string
	Preset   string
	Rules    []ContentRule
	Warnings []string
}

// RuleNames returns the enabled rule names in declaration order.
func (s *ContentRuleSet) RuleNames() []string {
	out := make([]string, len(s.Rules))
	for i, r := range s.Rules {
		out[i] = r.Name
	}
	return out
}

// LoadContentRulesFile reads and compiles a content-rule document from disk.
func LoadContentRulesFile(path, preset string) (*ContentRuleSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceInvalid, err)
	}
	return LoadContentRules(b, preset)
}

// LoadContentRules compiles a content-rule document. A preset name restricts
// the result to the preset's enabled categories and removes rules named in
// its exclude list; the empty preset enables everything. Individual rules
// with invalid regex syntax are dropped with a warning, never failing the
// whole load.
func LoadContentRules(doc []byte, preset string) (*ContentRuleSet, error) {
	var d contentDocument
	if err := yaml.Unmarshal(doc, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceInvalid, err)
	}
	if err := validateHeader(d.Version, d.Name, d.Categories != nil, "content-rule"); err != nil {
		return nil, err
	}

	set := &ContentRuleSet{Version: d.Version, Name: d.Name, Preset: preset}

	var enabled map[string]bool
	var excluded map[string]bool
	if preset != "" {
		p, ok := d.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, preset)
		}
		enabled = map[string]bool{}
		for _, c := range p.EnabledCategories {
			// unknown category names in a preset are ignored, not errors
			enabled[c] = true
		}
		excluded = map[string]bool{}
		for _, n := range p.ExcludePatterns {
			excluded[n] = true
		}
	}

	seen := map[string]bool{}
	for _, catName := range sortedKeys(d.Categories) {
		cat := d.Categories[catName]
		if enabled != nil && !enabled[catName] {
			continue
		}
		if cat.FileExtension != "" && len(cat.Patterns) == 0 {
			// legacy classifier entry, nothing to compile
			continue
		}
		normalized := normalizeCategory(catName, &set.Warnings)
		for _, p := range cat.Patterns {
			if excluded != nil && excluded[p.Name] {
				continue
			}
			if seen[p.Name] {
				set.warnf("duplicate rule name %q dropped", p.Name)
				continue
			}
			re, err := compilePattern(p.Regex, p.Flags)
			if err != nil {
				// lenient rule compilation: a typo in one rule must never
				// disable the whole detector
				set.warnf("rule %q: invalid pattern dropped: %v", p.Name, err)
				continue
			}
			sev := p.Severity
			if sev == "" {
				sev = cat.Severity
			}
			seen[p.Name] = true
			set.Rules = append(set.Rules, ContentRule{
				Name:        p.Name,
				Category:    normalized,
				Severity:    sev,
				Pattern:     re,
				Description: p.Description,
			})
		}
	}
	return set, nil
}

func (s *ContentRuleSet) warnf(format string, args ...any) {
	w := fmt.Sprintf(format, args...)
	s.Warnings = append(s.Warnings, w)
	logrus.Warn(w)
}

// compilePattern translates the document's flag letters into inline regexp
// flags before compiling.
func compilePattern(expr, flags string) (*regexp.Regexp, error) {
	var inline strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			inline.WriteRune(f)
		}
	}
	if inline.Len() > 0 {
		expr = "(?" + inline.String() + ")" + expr
	}
	return regexp.Compile(expr)
}

// sortedKeys orders map keys; YAML maps decode unordered, and compilation
// order decides finding order, so it has to be deterministic.
func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
