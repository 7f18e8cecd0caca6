// Package audit keeps an append-only JSONL history of completed scans so a
// caller can review what was scanned and when.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/packguard/packguard/internal/types"
)

// ScanRecord is one line of the audit log.
type ScanRecord struct {
	Timestamp time.Time     `json:"timestamp"`
	ScanID    string        `json:"scan_id"`
	Archive   string        `json:"archive"`
	FileCount int           `json:"file_count"`
	Summary   types.Summary `json:"summary"`
	Duration  string        `json:"duration"`
}

// Log appends scan records to a JSONL file.
type Log struct {
	path string
}

// DefaultPath places the log under XDG_STATE_HOME, falling back to
// ~/.local/state.
func DefaultPath() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home == "" {
			return ""
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "packguard", "audit.jsonl")
}

// New returns a Log writing to path, or to DefaultPath when path is empty.
func New(path string) *Log {
	if path == "" {
		path = DefaultPath()
	}
	return &Log{path: path}
}

// Append writes one record. The record gets a scan ID when it has none.
func (l *Log) Append(rec ScanRecord) error {
	if l.path == "" {
		return fmt.Errorf("no audit log path available")
	}
	if rec.ScanID == "" {
		rec.ScanID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = f.Write(append(b, '\n'))
	return err
}

// History returns recorded scans, newest first. Malformed lines are skipped.
func (l *Log) History() ([]ScanRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec ScanRecord
		if err := dec.Decode(&rec); err != nil {
			break
		}
		records = append(records, rec)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}
