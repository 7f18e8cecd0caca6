package report

import (
	"encoding/json"
	"io"

	"github.com/packguard/packguard/internal/scan"
)

// WriteJSON writes the machine-readable result envelope consumed by UI
// collaborators: findings, summary, and package info.
func WriteJSON(w io.Writer, res *scan.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
