// Package rules loads and compiles the two detection rule sets from YAML
// documents: content regex rules grouped into categories, and file-extension
// rules with risk metadata. Both the bundled defaults and user-supplied
// overrides go through the same loaders.
package rules

import (
	"errors"
	"fmt"

	"github.com/blang/semver/v4"
	"github.com/sirupsen/logrus"

	"github.com/packguard/packguard/internal/types"
)

var (
	// ErrSourceInvalid means a rule document is unreadable or malformed.
	ErrSourceInvalid = errors.New("rule source invalid")
	// ErrPresetNotFound means the requested preset is not defined in the document.
	ErrPresetNotFound = errors.New("preset not found")
)

// Known rule categories. Documents may only use these; unknown names are
// warned about and folded into CategoryOther rather than silently accepted.
const (
	CategoryNetwork       = "network"
	CategoryProcess       = "process"
	CategoryFilesystem    = "filesystem"
	CategoryRegistry      = "registry"
	CategoryCodeExecution = "codeExecution"
	CategoryNativeInterop = "nativeInterop"
	CategoryObfuscation   = "obfuscation"
	CategoryOther         = "other"
)

var knownCategories = map[string]bool{
	CategoryNetwork:       true,
	CategoryProcess:       true,
	CategoryFilesystem:    true,
	CategoryRegistry:      true,
	CategoryCodeExecution: true,
	CategoryNativeInterop: true,
	CategoryObfuscation:   true,
	CategoryOther:         true,
}

// normalizeCategory maps a document category name onto the closed category
// set, recording a warning for anything unrecognized.
func normalizeCategory(name string, warnings *[]string) string {
	if knownCategories[name] {
		return name
	}
	w := fmt.Sprintf("unknown category %q mapped to %q", name, CategoryOther)
	*warnings = append(*warnings, w)
	logrus.Warn(w)
	return CategoryOther
}

// contentDocument is the on-disk shape of the content-rule YAML document.
type contentDocument struct {
	Version     string                     `yaml:"version"`
	Name        string                     `yaml:"name"`
	Description string                     `yaml:"description"`
	Categories  map[string]contentCategory `yaml:"categories"`
	Presets     map[string]contentPreset   `yaml:"presets"`
}

type contentCategory struct {
	Severity    types.Severity   `yaml:"severity"`
	Description string           `yaml:"description"`
	Patterns    []contentPattern `yaml:"patterns"`

	// Legacy extension-classifier entries; carry no content patterns.
	FileExtension string `yaml:"fileExtension"`
}

type contentPattern struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Regex       string         `yaml:"regex"`
	Flags       string         `yaml:"flags"`
	Severity    types.Severity `yaml:"severity"`
}

type contentPreset struct {
	EnabledCategories []string `yaml:"enabledCategories"`
	ExcludePatterns   []string `yaml:"excludePatterns"`
}

// extensionDocument is the on-disk shape of the extension-rule YAML document.
type extensionDocument struct {
	Version     string                         `yaml:"version"`
	Name        string                         `yaml:"name"`
	Description string                         `yaml:"description"`
	Extensions  map[string]extensionEntry      `yaml:"extensions"`
	Categories  map[string]extensionCategory   `yaml:"categories"`
	Presets     map[string]extensionPresetSpec `yaml:"presets"`
}

type extensionEntry struct {
	Severity     types.Severity    `yaml:"severity"`
	Category     string            `yaml:"category"`
	Description  string            `yaml:"description"`
	RiskLevel    types.RiskLevel   `yaml:"riskLevel"`
	CheckContent bool              `yaml:"checkContent"`
	Metadata     extensionMetadata `yaml:"metadata"`
}

type extensionMetadata struct {
	FileType   string   `yaml:"fileType"`
	Platform   []string `yaml:"platform"`
	CommonUses []string `yaml:"commonUses"`
}

type extensionCategory struct {
	Description string `yaml:"description"`
}

type extensionPresetSpec struct {
	EnabledExtensions []string `yaml:"enabledExtensions"`
}

// validateHeader checks the required top-level fields shared by both
// document kinds. The version must parse as semver.
func validateHeader(version, name string, haveMap bool, kind string) error {
	if version == "" || name == "" || !haveMap {
		return fmt.Errorf("%w: %s document missing version, name or %s map", ErrSourceInvalid, kind, kind)
	}
	if _, err := semver.ParseTolerant(version); err != nil {
		return fmt.Errorf("%w: %s document version %q: %v", ErrSourceInvalid, kind, version, err)
	}
	return nil
}
