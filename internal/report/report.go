// Package report formats the end-of-run summary lines: token usage, oversized
// parts, and secret findings. The CLI decides where the lines go; nothing here
// writes output.
package report

import (
	"fmt"

	"github.com/ctxpack/ctxpack/internal/pack"
	"github.com/ctxpack/ctxpack/internal/types"
)

const (
	tokenReportHeader   = "--- Token Report ---"
	partTokensFormat    = "part %d: ~%d tokens"
	totalTokensFormat   = "total estimated tokens: ~%d"
	oversizedPartFormat = "part %d holds ~%d tokens, above the warning threshold of %d"
	secretFindingFormat = "potential secret in %s:%d [%s] %s"
)

// TokenReportLines summarizes token usage across parts. Per-part lines appear
// only when the output was split.
func TokenReportLines(parts []types.OutputPart) []string {
	reportLines := []string{tokenReportHeader}
	if len(parts) > 1 {
		for _, part := range parts {
			reportLines = append(reportLines, fmt.Sprintf(partTokensFormat, part.Index, part.TokenCount))
		}
	}
	return append(reportLines, fmt.Sprintf(totalTokensFormat, types.TotalTokens(parts)))
}

// OversizedPartWarnings formats one warning per part whose token count exceeds
// warnTokensPerPart. A non-positive threshold disables the check.
func OversizedPartWarnings(parts []types.OutputPart, warnTokensPerPart int) []string {
	var warnings []string
	for _, part := range pack.Oversized(parts, warnTokensPerPart) {
		warnings = append(warnings, fmt.Sprintf(oversizedPartFormat, part.Index, part.TokenCount, warnTokensPerPart))
	}
	return warnings
}

// SecretFindingWarnings formats one warning per finding, in record order. The
// lines carry the masked excerpt, never the matched value.
func SecretFindingWarnings(records []types.EnrichedFileRecord) []string {
	var warnings []string
	for _, record := range records {
		for _, finding := range record.SecretFindings {
			warnings = append(warnings, fmt.Sprintf(secretFindingFormat, finding.Path, finding.LineNumber, finding.RuleID, finding.RedactedExcerpt))
		}
	}
	return warnings
}
