// Package types defines the data structures shared across the ctxpack packages.
package types

const (
	CommandPack = "pack"
	CommandTree = "tree"

	FormatText = "text"
	FormatJSON = "json"
)

// FileRecord describes one candidate file produced by discovery. RelativePath is
// slash-separated and relative to the project root regardless of platform.
type FileRecord struct {
	AbsolutePath string
	RelativePath string
	Extension    string
	SizeBytes    int64
	Included     bool
}

// SecretFinding reports one likely sensitive value found in a scanned file. The
// excerpt is masked and truncated; the raw matched value is never carried in full.
type SecretFinding struct {
	Path            string `json:"path"`
	LineNumber      int    `json:"line"`
	RuleID          string `json:"ruleId"`
	RedactedExcerpt string `json:"redactedExcerpt"`
}

// EnrichedFileRecord is a FileRecord extended with file content and the fields
// derived during aggregation. Binary records carry no content, token count, or
// findings. TokenCounted distinguishes a real zero count from counting being
// disabled or failed for the record.
type EnrichedFileRecord struct {
	FileRecord
	Content        string
	Binary         bool
	MimeType       string
	ContentSHA256  string
	TokenCount     int
	TokenCounted   bool
	SecretFindings []SecretFinding
}

// OutputPart is one contiguous, ordered group of enriched records bounded by a
// token budget. Index is 1-based. TokenCount is the sum of the records' counts.
type OutputPart struct {
	Index      int
	Records    []EnrichedFileRecord
	TokenCount int
}

// TotalTokens sums the cumulative token counts of the provided parts.
func TotalTokens(parts []OutputPart) int {
	total := 0
	for _, part := range parts {
		total += part.TokenCount
	}
	return total
}

// TotalFiles sums the record counts of the provided parts.
func TotalFiles(parts []OutputPart) int {
	total := 0
	for _, part := range parts {
		total += len(part.Records)
	}
	return total
}
