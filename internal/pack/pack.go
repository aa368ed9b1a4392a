// Package pack groups enriched records into ordered, token-bounded parts.
package pack

import "github.com/ctxpack/ctxpack/internal/types"

// Pack splits records into sequential parts whose summed token counts stay at
// or below maxTokensPerPart. Records are never reordered or split; a record
// larger than the limit occupies a part of its own. A non-positive limit
// yields a single part holding every record. An empty record list yields no
// parts.
func Pack(records []types.EnrichedFileRecord, maxTokensPerPart int) []types.OutputPart {
	if len(records) == 0 {
		return nil
	}
	if maxTokensPerPart <= 0 {
		return []types.OutputPart{{Index: 1, Records: records, TokenCount: sumTokenCounts(records)}}
	}

	var parts []types.OutputPart
	var currentRecords []types.EnrichedFileRecord
	currentTokens := 0
	for _, record := range records {
		if len(currentRecords) > 0 && currentTokens+record.TokenCount > maxTokensPerPart {
			parts = appendPart(parts, currentRecords, currentTokens)
			currentRecords = nil
			currentTokens = 0
		}
		currentRecords = append(currentRecords, record)
		currentTokens += record.TokenCount
	}
	return appendPart(parts, currentRecords, currentTokens)
}

// Oversized returns the parts whose token counts exceed warnTokensPerPart. A
// non-positive threshold disables the check.
func Oversized(parts []types.OutputPart, warnTokensPerPart int) []types.OutputPart {
	if warnTokensPerPart <= 0 {
		return nil
	}
	var oversizedParts []types.OutputPart
	for _, part := range parts {
		if part.TokenCount > warnTokensPerPart {
			oversizedParts = append(oversizedParts, part)
		}
	}
	return oversizedParts
}

func appendPart(parts []types.OutputPart, records []types.EnrichedFileRecord, tokenCount int) []types.OutputPart {
	return append(parts, types.OutputPart{Index: len(parts) + 1, Records: records, TokenCount: tokenCount})
}

func sumTokenCounts(records []types.EnrichedFileRecord) int {
	total := 0
	for _, record := range records {
		total += record.TokenCount
	}
	return total
}
