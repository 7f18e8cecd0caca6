package scan

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"github.com/packguard/packguard/internal/archive"
	"github.com/packguard/packguard/internal/assets"
	"github.com/packguard/packguard/internal/progress"
	"github.com/packguard/packguard/internal/rules"
	"github.com/packguard/packguard/internal/types"
)

// DefaultPreset is applied when Options names no preset and supplies no
// pre-compiled rule sets.
const DefaultPreset = "standard"

// Options configures one scan session. Zero values mean: bundled rule
// documents, DefaultPreset, system temp root, no path filtering, scratch
// directory deleted when the session ends.
type Options struct {
	ArchivePath string
	TempRoot    string

	// Preset selects a named subset in both rule documents. Ignored for a
	// rule set that is supplied pre-compiled.
	Preset             string
	ContentRulesPath   string
	ExtensionRulesPath string
	ContentRules       *rules.ContentRuleSet
	ExtensionRules     *rules.ExtensionRuleSet

	// Include/Exclude are comma-separated doublestar globs applied to
	// logical paths before scanning.
	Include string
	Exclude string

	// KeepScratch leaves the extracted tree on disk; Result.ScratchDir then
	// points at it and the caller owns deletion.
	KeepScratch bool

	Progress progress.Sink
}

// Result is the immutable outcome of a scan session. It carries no reference
// to the scratch directory (unless KeepScratch was set) and stays valid after
// the scratch tree is deleted.
type Result struct {
	Findings   []types.Finding   `json:"findings"`
	Summary    types.Summary     `json:"summary"`
	Package    types.PackageInfo `json:"packageInfo"`
	Duration   time.Duration     `json:"-"`
	ScratchDir string            `json:"-"`
	Warnings   []string          `json:"-"`
}

// Run executes a full scan: load rules, extract, resolve, scan, aggregate.
// Configuration errors surface before any file is touched; extraction errors
// abort the scan with the scratch directory cleaned up. Sessions share no
// mutable state and may run concurrently.
func Run(opts Options) (*Result, error) {
	started := time.Now()
	sink := opts.Progress
	if sink == nil {
		sink = progress.Discard
	}

	contentSet, extensionSet, err := loadRuleSets(opts)
	if err != nil {
		return nil, err
	}

	sink.Publish(progress.Event{Stage: progress.StageExtracting, Progress: 0, Message: "extracting package"})
	scratch, err := archive.Extract(opts.ArchivePath, opts.TempRoot)
	if err != nil {
		return nil, err
	}
	keep := false
	defer func() {
		if !keep {
			archive.Cleanup(scratch)
		}
	}()
	sink.Publish(progress.Event{Stage: progress.StageExtracting, Progress: 100})

	sink.Publish(progress.Event{Stage: progress.StageAnalyzing, Progress: 0, Message: "resolving assets"})
	files, err := assets.Resolve(scratch)
	if err != nil {
		return nil, fmt.Errorf("resolve package layout: %w", err)
	}
	files = filterFiles(files, opts.Include, opts.Exclude)
	info := assets.Summarize(opts.ArchivePath, files)
	sink.Publish(progress.Event{Stage: progress.StageAnalyzing, Progress: 100, Message: fmt.Sprintf("%d files", len(files))})

	findings := scanWithProgress(files, contentSet, extensionSet, sink)

	res := &Result{
		Findings: findings,
		Summary:  Summarize(findings),
		Package:  info,
		Duration: time.Since(started),
	}
	res.Warnings = append(res.Warnings, contentSet.Warnings...)
	res.Warnings = append(res.Warnings, extensionSet.Warnings...)
	if opts.KeepScratch {
		keep = true
		res.ScratchDir = scratch
	}

	sink.Publish(progress.Event{Stage: progress.StageCompleted, Progress: 100,
		Message: fmt.Sprintf("%d findings", res.Summary.Total)})
	logrus.WithFields(logrus.Fields{
		"archive":  info.FileName,
		"files":    info.FileCount,
		"findings": res.Summary.Total,
		"duration": res.Duration.Round(time.Millisecond),
	}).Info("scan completed")
	return res, nil
}

// scanWithProgress is ScanFiles with per-file scanning progress. Ordering is
// identical to ScanFiles.
func scanWithProgress(files []types.ExtractedFile, content *rules.ContentRuleSet, extensions *rules.ExtensionRuleSet, sink progress.Sink) []types.Finding {
	findings := []types.Finding{}
	sink.Publish(progress.Event{Stage: progress.StageScanning, Progress: 0})
	for _, f := range files {
		if fd, ok := extensionFinding(f, extensions); ok {
			findings = append(findings, fd)
		}
	}
	for i, f := range files {
		findings = append(findings, contentFindings(f, content)...)
		if len(files) > 0 {
			sink.Publish(progress.Event{
				Stage:       progress.StageScanning,
				Progress:    (i + 1) * 100 / len(files),
				CurrentFile: f.Path,
			})
		}
	}
	sink.Publish(progress.Event{Stage: progress.StageScanning, Progress: 100})
	return findings
}

func loadRuleSets(opts Options) (*rules.ContentRuleSet, *rules.ExtensionRuleSet, error) {
	preset := opts.Preset
	if preset == "" && opts.ContentRules == nil && opts.ExtensionRules == nil {
		preset = DefaultPreset
	}

	contentSet := opts.ContentRules
	if contentSet == nil {
		var err error
		if opts.ContentRulesPath != "" {
			contentSet, err = rules.LoadContentRulesFile(opts.ContentRulesPath, preset)
		} else {
			contentSet, err = rules.DefaultContentRules(preset)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	extensionSet := opts.ExtensionRules
	if extensionSet == nil {
		var err error
		if opts.ExtensionRulesPath != "" {
			extensionSet, err = rules.LoadExtensionRulesFile(opts.ExtensionRulesPath, preset)
		} else {
			extensionSet, err = rules.DefaultExtensionRules(preset)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return contentSet, extensionSet, nil
}

// filterFiles applies comma-separated include/exclude globs to logical
// paths. Includes, when present, act as a positive filter; excludes are
// subtracted last. Matching uses forward-slash semantics.
func filterFiles(files []types.ExtractedFile, include, exclude string) []types.ExtractedFile {
	includes := splitGlobs(include)
	excludes := splitGlobs(exclude)
	if len(includes) == 0 && len(excludes) == 0 {
		return files
	}
	out := make([]types.ExtractedFile, 0, len(files))
	for _, f := range files {
		p := strings.ReplaceAll(f.Path, "\\", "/")
		if len(includes) > 0 && !matchAnyGlob(p, includes) {
			continue
		}
		if len(excludes) > 0 && matchAnyGlob(p, excludes) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func splitGlobs(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func matchAnyGlob(path string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, path); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}
