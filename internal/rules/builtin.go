package rules

import _ "embed"

// The default rule sets ship as YAML documents consumed through the same
// loaders as user-supplied overrides, so there is exactly one rule-loading
// code path.

//go:embed defaults/content_rules.yml
var defaultContentDoc []byte

//go:embed defaults/extension_rules.yml
var defaultExtensionDoc []byte

// DefaultContentRules compiles the bundled content-rule document.
func DefaultContentRules(preset string) (*ContentRuleSet, error) {
	return LoadContentRules(defaultContentDoc, preset)
}

// DefaultExtensionRules compiles the bundled extension-rule document.
func DefaultExtensionRules(preset string) (*ExtensionRuleSet, error) {
	return LoadExtensionRules(defaultExtensionDoc, preset)
}
