// Package report renders scan results for human and machine consumers. The
// engine itself never orders findings by severity; that happens here.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/packguard/packguard/internal/scan"
	"github.com/packguard/packguard/internal/types"
)

// PrintOptions controls human-readable output.
type PrintOptions struct {
	NoColor  bool
	Duration time.Duration
}

var severityRank = map[types.Severity]int{
	types.SevCritical: 0,
	types.SevWarning:  1,
	types.SevInfo:     2,
}

func sortForDisplay(findings []types.Finding) []types.Finding {
	out := make([]types.Finding, len(findings))
	copy(out, findings)
	sort.SliceStable(out, func(i, j int) bool {
		if severityRank[out[i].Severity] != severityRank[out[j].Severity] {
			return severityRank[out[i].Severity] < severityRank[out[j].Severity]
		}
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// PrintTable writes findings as a bordered table followed by the summary.
func PrintTable(w io.Writer, res *scan.Result, opts PrintOptions) {
	if res.Summary.Total == 0 {
		fmt.Fprintln(w, "No risky content found ✅")
		printFooter(w, res, opts)
		return
	}
	table := tablewriter.NewTable(w)
	table.Header([]string{"Severity", "Category", "Rule", "Location", "Description"})
	for _, f := range sortForDisplay(res.Findings) {
		loc := f.Path
		if f.Line > 0 {
			loc = fmt.Sprintf("%s:%d", f.Path, f.Line)
		}
		table.Append([]string{string(f.Severity), f.Category, f.Rule, loc, f.Description})
	}
	_ = table.Render()
	printFooter(w, res, opts)
}

// PrintText writes findings in a plain columnar format, one per line.
func PrintText(w io.Writer, res *scan.Result, opts PrintOptions) {
	findings := sortForDisplay(res.Findings)
	if len(findings) == 0 {
		fmt.Fprintln(w, "No risky content found ✅")
	}
	maxRule := 8
	for _, f := range findings {
		if len(f.Rule) > maxRule {
			maxRule = len(f.Rule)
		}
	}
	for _, f := range findings {
		sev := string(f.Severity)
		if !opts.NoColor {
			sev = colorSeverity(f.Severity)
		}
		loc := f.Path
		if f.Line > 0 {
			loc = fmt.Sprintf("%s:%d", f.Path, f.Line)
		}
		fmt.Fprintf(w, "%-8s %-*s %s\n", sev, maxRule, f.Rule, loc)
	}
	printFooter(w, res, opts)
}

func printFooter(w io.Writer, res *scan.Result, opts PrintOptions) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d (critical: %d, warning: %d, info: %d)\n",
		res.Summary.Total, res.Summary.Critical, res.Summary.Warning, res.Summary.Info)
	fmt.Fprintf(w, "Package: %s (%d files, %d scripts, %d native libraries)\n",
		res.Package.FileName, res.Package.FileCount, res.Package.ScriptCount, res.Package.NativeLibraryCount)
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
}

func colorSeverity(s types.Severity) string {
	switch s {
	case types.SevCritical:
		return "\x1b[31mcritical\x1b[0m" // red
	case types.SevWarning:
		return "\x1b[33mwarning\x1b[0m" // yellow
	default:
		return "\x1b[36minfo\x1b[0m" // cyan
	}
}
