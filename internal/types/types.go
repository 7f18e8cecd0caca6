package types

// Severity is the risk level assigned to a finding or rule category.
type Severity string

const (
	SevCritical Severity = "critical"
	SevWarning  Severity = "warning"
	SevInfo     Severity = "info"
)

// RiskLevel is the structural risk attached to an extension rule. It is an
// independent facet from Severity and the two are never reconciled.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// FileType classifies an extracted asset by its original file extension.
type FileType string

const (
	FileScript        FileType = "script"
	FileNativeLibrary FileType = "nativeLibrary"
	FileAsset         FileType = "asset"
	FileTexture       FileType = "texture"
	FileModel         FileType = "model"
	FileAudio         FileType = "audio"
	FileMetadata      FileType = "metadata"
	FileOther         FileType = "other"
)

// ExtractedFile is one logical file recovered from the package archive.
// Content is populated only for script files below the size ceiling; it is
// nil for everything else, including scripts whose payload could not be read.
// Values are immutable once produced by the resolver.
type ExtractedFile struct {
	Path      string   `json:"path"`
	Type      FileType `json:"type"`
	SizeBytes uint64   `json:"sizeBytes"`
	Content   *string  `json:"content,omitempty"`
	AssetID   string   `json:"assetId,omitempty"`
}

// Text returns the file content, or the empty string when none was captured.
func (f ExtractedFile) Text() string {
	if f.Content == nil {
		return ""
	}
	return *f.Content
}

// Finding describes one detection event: a content-rule match on a single
// line, or an extension-rule classification of a single file. Findings are
// produced by the scan engine and never mutated afterwards.
type Finding struct {
	ID          string   `json:"id"`
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Rule        string   `json:"rule"`
	Path        string   `json:"filePath"`
	Line        int      `json:"lineNumber"` // 0 when not line-based
	Context     string   `json:"contextSnippet,omitempty"`
	Description string   `json:"description,omitempty"`

	// Extension-rule facets; empty for content findings.
	FileTypeLabel string    `json:"fileTypeLabel,omitempty"`
	RiskLevel     RiskLevel `json:"riskLevel,omitempty"`
	Platforms     []string  `json:"platforms,omitempty"`
}

// Summary holds per-severity finding counts. Total always equals the length
// of the finding list it was derived from.
type Summary struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
	Total    int `json:"total"`
}

// PackageInfo aggregates file counts by type plus the full extracted listing.
// It lives only as long as the scan session that produced it.
type PackageInfo struct {
	FileName           string          `json:"fileName"`
	FileSize           int64           `json:"fileSize"`
	FileCount          int             `json:"fileCount"`
	ScriptCount        int             `json:"scriptCount"`
	NativeLibraryCount int             `json:"nativeLibraryCount"`
	AssetCount         int             `json:"assetCount"`
	Files              []ExtractedFile `json:"extractedFiles"`
}
