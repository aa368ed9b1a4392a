// Package aggregate reads candidate files and derives the enriched records the
// packer consumes. Per-file failures degrade to warnings; the batch never
// aborts because one file could not be read, counted, or scanned.
package aggregate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ctxpack/ctxpack/internal/secrets"
	"github.com/ctxpack/ctxpack/internal/tokenizer"
	"github.com/ctxpack/ctxpack/internal/types"
	"github.com/ctxpack/ctxpack/internal/utils"
)

const (
	warningReadFormat  = "cannot read %s: %v"
	warningCountFormat = "failed to count tokens for %s: %v"
	warningScanFormat  = "secret scan failed for %s: %v"
)

// Options selects the optional enrichment services. A nil counter disables
// token counting; a nil scanner disables secret scanning.
type Options struct {
	TokenCounter  tokenizer.Counter
	SecretScanner secrets.Scanner
}

type enrichmentResult struct {
	record   types.EnrichedFileRecord
	warnings []string
}

// EnrichAll enriches every record and returns the batch in input order along
// with the warnings gathered across files, also in input order. Files are
// processed concurrently; results are slotted by index so the output stays
// deterministic.
func EnrichAll(records []types.FileRecord, options Options) ([]types.EnrichedFileRecord, []string) {
	results := make([]enrichmentResult, len(records))
	group := new(errgroup.Group)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for recordIndex, record := range records {
		group.Go(func() error {
			enrichedRecord, recordWarnings := Enrich(record, options)
			results[recordIndex] = enrichmentResult{record: enrichedRecord, warnings: recordWarnings}
			return nil
		})
	}
	_ = group.Wait()

	enrichedRecords := make([]types.EnrichedFileRecord, 0, len(records))
	var warnings []string
	for _, result := range results {
		enrichedRecords = append(enrichedRecords, result.record)
		warnings = append(warnings, result.warnings...)
	}
	return enrichedRecords, warnings
}

// Enrich reads one file and attaches content, hash, token count, and secret
// findings. Undecodable or unreadable content flags the record binary and
// skips counting and scanning; the record itself always survives. The token
// count produced here is the single source of truth for packing and reporting.
func Enrich(record types.FileRecord, options Options) (types.EnrichedFileRecord, []string) {
	enriched := types.EnrichedFileRecord{FileRecord: record}

	data, readError := os.ReadFile(record.AbsolutePath)
	if readError != nil {
		enriched.Binary = true
		return enriched, []string{fmt.Sprintf(warningReadFormat, record.RelativePath, readError)}
	}

	if utils.IsBinary(data) {
		enriched.Binary = true
		enriched.MimeType = utils.DetectMimeType(record.AbsolutePath)
		return enriched, nil
	}

	enriched.Content = string(data)
	contentHash := sha256.Sum256(data)
	enriched.ContentSHA256 = hex.EncodeToString(contentHash[:])

	var warnings []string
	if options.TokenCounter != nil {
		countResult, countError := tokenizer.CountBytes(options.TokenCounter, data)
		if countError != nil {
			warnings = append(warnings, fmt.Sprintf(warningCountFormat, record.RelativePath, countError))
		} else if countResult.Counted {
			enriched.TokenCount = countResult.Tokens
			enriched.TokenCounted = true
		}
	}

	if options.SecretScanner != nil {
		findings, scanError := options.SecretScanner.Scan(record.RelativePath, enriched.Content)
		if scanError != nil {
			warnings = append(warnings, fmt.Sprintf(warningScanFormat, record.RelativePath, scanError))
		} else {
			enriched.SecretFindings = findings
		}
	}

	return enriched, warnings
}
