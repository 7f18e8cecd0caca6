// Package scan runs compiled rule sets over a resolved file listing and
// turns matches into findings. Scanning is a total function: once rules are
// compiled and files resolved, nothing in here can fail.
package scan

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/packguard/packguard/internal/rules"
	"github.com/packguard/packguard/internal/types"
)

const (
	previewLines    = 5
	previewMaxBytes = 300
)

// ScanFiles applies both rule sets to the listing and returns findings in
// encounter order: extension findings first (file iteration order), then
// content findings (file order, then line order, then rule declaration
// order). No severity sorting happens here; that is a presentation concern.
func ScanFiles(files []types.ExtractedFile, content *rules.ContentRuleSet, extensions *rules.ExtensionRuleSet) []types.Finding {
	findings := []types.Finding{}
	for _, f := range files {
		if fd, ok := extensionFinding(f, extensions); ok {
			findings = append(findings, fd)
		}
	}
	for _, f := range files {
		findings = append(findings, contentFindings(f, content)...)
	}
	return findings
}

// extensionFinding classifies a single file against the enabled extension
// set. Extension matching is case-insensitive by contract; files without an
// extension or with a disabled one produce nothing.
func extensionFinding(f types.ExtractedFile, set *rules.ExtensionRuleSet) (types.Finding, bool) {
	if set == nil {
		return types.Finding{}, false
	}
	ext := filepath.Ext(f.Path)
	if ext == "" {
		return types.Finding{}, false
	}
	rule, ok := set.Lookup(ext)
	if !ok {
		return types.Finding{}, false
	}

	context := ""
	if rule.CheckContent && f.Content != nil {
		context = contentHeuristic(f.Text())
	}
	return types.Finding{
		ID:            findingID(f.Path, 0, rule.Extension),
		Severity:      rule.Severity,
		Category:      rule.Category,
		Rule:          rule.Extension,
		Path:          f.Path,
		Context:       context,
		Description:   rule.Description,
		FileTypeLabel: rule.FileTypeLabel,
		RiskLevel:     rule.RiskLevel,
		Platforms:     rule.Platforms,
	}, true
}

// contentHeuristic summarizes script-like content for an extension finding:
// a truncated preview of the first few lines, the line count, and any
// destructive keyword hits.
func contentHeuristic(content string) string {
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	n := len(lines)
	head := lines
	if len(head) > previewLines {
		head = head[:previewLines]
	}
	preview := strings.Join(head, "\n")
	if len(preview) > previewMaxBytes {
		preview = preview[:previewMaxBytes] + "…"
	}

	var b strings.Builder
	b.WriteString(preview)
	fmt.Fprintf(&b, "\n(%d lines)", n)
	if hits := keywordHits(content); len(hits) > 0 {
		fmt.Fprintf(&b, "\nsuspicious keywords: %s", strings.Join(hits, ", "))
	}
	return b.String()
}

// contentFindings runs every enabled content rule over every scannable line
// of a script file. Whole-line comments are skipped; a trailing comment after
// code does not exempt the line. Each (line, rule) match is an independent
// finding with no deduplication.
func contentFindings(f types.ExtractedFile, set *rules.ContentRuleSet) []types.Finding {
	if set == nil || f.Type != types.FileScript || f.Content == nil || *f.Content == "" {
		return nil
	}
	var out []types.Finding
	for i, raw := range strings.Split(f.Text(), "\n") {
		// CRLF scripts leave a trailing \r on every line after the split
		line := strings.TrimSuffix(raw, "\r")
		if isCommentLine(line) {
			continue
		}
		for _, rule := range set.Rules {
			if !rule.Pattern.MatchString(line) {
				continue
			}
			out = append(out, types.Finding{
				ID:          findingID(f.Path, i+1, rule.Name),
				Severity:    rule.Severity,
				Category:    rule.Category,
				Rule:        rule.Name,
				Path:        f.Path,
				Line:        i + 1,
				Context:     line,
				Description: rule.Description,
			})
		}
	}
	return out
}

// isCommentLine reports whether the trimmed line is a whole-line comment.
// Block comments spanning multiple lines are not tracked; only lines that
// themselves start with a comment marker are skipped.
func isCommentLine(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "//") || strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "*")
}

// findingID derives a stable identifier from the match coordinates, so the
// same finding gets the same ID across runs.
func findingID(path string, line int, rule string) string {
	sum := xxhash.Sum64String(fmt.Sprintf("%s\x00%d\x00%s", path, line, rule))
	return fmt.Sprintf("f-%016x", sum)
}
