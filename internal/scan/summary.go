package scan

import "github.com/packguard/packguard/internal/types"

// Summarize reduces a finding list to per-severity counts. Total always
// equals the input length; findings are not mutated.
func Summarize(findings []types.Finding) types.Summary {
	s := types.Summary{Total: len(findings)}
	for _, f := range findings {
		switch f.Severity {
		case types.SevCritical:
			s.Critical++
		case types.SevWarning:
			s.Warning++
		default:
			s.Info++
		}
	}
	return s
}
