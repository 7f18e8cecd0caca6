package core

import (
	"github.com/packguard/packguard/internal/progress"
	"github.com/packguard/packguard/internal/rules"
	"github.com/packguard/packguard/internal/scan"
	"github.com/packguard/packguard/internal/types"
)

// Re-export selected internal types as a stable public API surface. These
// are type aliases so external consumers (a desktop UI, an export pipeline)
// can depend on a stable path.
type (
	Options       = scan.Options
	Result        = scan.Result
	Finding       = types.Finding
	Summary       = types.Summary
	PackageInfo   = types.PackageInfo
	ExtractedFile = types.ExtractedFile
	ProgressEvent = progress.Event
	ProgressSink  = progress.Sink
)

// Scan is the stable entrypoint for other programs: one full session over
// the archive named in opts.
func Scan(opts Options) (*Result, error) {
	return scan.Run(opts)
}

// ContentRuleNames returns the compiled rule names of the bundled content
// document under the given preset, in declaration order.
func ContentRuleNames(preset string) ([]string, error) {
	set, err := rules.DefaultContentRules(preset)
	if err != nil {
		return nil, err
	}
	return set.RuleNames(), nil
}

// EnabledExtensions returns the enabled extensions of the bundled extension
// document under the given preset.
func EnabledExtensions(preset string) ([]string, error) {
	set, err := rules.DefaultExtensionRules(preset)
	if err != nil {
		return nil, err
	}
	return set.Extensions(), nil
}
