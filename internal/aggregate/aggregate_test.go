package aggregate_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ctxpack/ctxpack/internal/aggregate"
	"github.com/ctxpack/ctxpack/internal/types"
)

const emptyContentSHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

type runeCounter struct {
	failure error
}

func (counter runeCounter) Name() string {
	return "rune-counter"
}

func (counter runeCounter) CountString(input string) (int, error) {
	if counter.failure != nil {
		return 0, counter.failure
	}
	return utf8.RuneCountInString(input), nil
}

type recordingScanner struct {
	failure      error
	scannedPaths []string
}

func (scanner *recordingScanner) Name() string {
	return "recording-scanner"
}

func (scanner *recordingScanner) Scan(relativePath string, content string) ([]types.SecretFinding, error) {
	scanner.scannedPaths = append(scanner.scannedPaths, relativePath)
	if scanner.failure != nil {
		return nil, scanner.failure
	}
	if strings.Contains(content, "SECRET") {
		return []types.SecretFinding{{Path: relativePath, LineNumber: 1, RuleID: "stub", RedactedExcerpt: "SECR************"}}, nil
	}
	return nil, nil
}

func writeTestFile(testingHandle *testing.T, directoryPath string, fileName string, content []byte) types.FileRecord {
	testingHandle.Helper()
	absolutePath := filepath.Join(directoryPath, fileName)
	if writeError := os.WriteFile(absolutePath, content, 0o644); writeError != nil {
		testingHandle.Fatalf("write %s: %v", absolutePath, writeError)
	}
	return types.FileRecord{
		AbsolutePath: absolutePath,
		RelativePath: fileName,
		Extension:    filepath.Ext(fileName),
		SizeBytes:    int64(len(content)),
		Included:     true,
	}
}

func TestEnrichTextFile(testingHandle *testing.T) {
	temporaryDirectory := testingHandle.TempDir()
	record := writeTestFile(testingHandle, temporaryDirectory, "main.go", []byte("package main\n"))

	enriched, warnings := aggregate.Enrich(record, aggregate.Options{TokenCounter: runeCounter{}})

	if len(warnings) != 0 {
		testingHandle.Fatalf("unexpected warnings: %v", warnings)
	}
	if enriched.Binary {
		testingHandle.Error("text file flagged binary")
	}
	if enriched.Content != "package main\n" {
		testingHandle.Errorf("unexpected content %q", enriched.Content)
	}
	if len(enriched.ContentSHA256) != 64 {
		testingHandle.Errorf("unexpected digest %q", enriched.ContentSHA256)
	}
	if !enriched.TokenCounted || enriched.TokenCount != utf8.RuneCountInString("package main\n") {
		testingHandle.Errorf("unexpected token count %d counted=%v", enriched.TokenCount, enriched.TokenCounted)
	}
}

func TestEnrichEmptyFile(testingHandle *testing.T) {
	temporaryDirectory := testingHandle.TempDir()
	record := writeTestFile(testingHandle, temporaryDirectory, "empty.txt", nil)

	enriched, warnings := aggregate.Enrich(record, aggregate.Options{TokenCounter: runeCounter{}})

	if len(warnings) != 0 {
		testingHandle.Fatalf("unexpected warnings: %v", warnings)
	}
	if enriched.Binary {
		testingHandle.Error("empty file flagged binary")
	}
	if enriched.ContentSHA256 != emptyContentSHA256 {
		testingHandle.Errorf("unexpected digest %q", enriched.ContentSHA256)
	}
	if !enriched.TokenCounted || enriched.TokenCount != 0 {
		testingHandle.Errorf("unexpected token count %d counted=%v", enriched.TokenCount, enriched.TokenCounted)
	}
}

func TestEnrichBinaryFile(testingHandle *testing.T) {
	temporaryDirectory := testingHandle.TempDir()
	record := writeTestFile(testingHandle, temporaryDirectory, "blob.bin", []byte{0x00, 0x01, 0xFF, 0xFE})
	scanner := &recordingScanner{}

	enriched, warnings := aggregate.Enrich(record, aggregate.Options{TokenCounter: runeCounter{}, SecretScanner: scanner})

	if len(warnings) != 0 {
		testingHandle.Fatalf("unexpected warnings: %v", warnings)
	}
	if !enriched.Binary {
		testingHandle.Error("binary file not flagged binary")
	}
	if enriched.Content != "" {
		testingHandle.Errorf("binary content retained: %q", enriched.Content)
	}
	if enriched.TokenCounted {
		testingHandle.Error("binary file received a token count")
	}
	if len(scanner.scannedPaths) != 0 {
		testingHandle.Errorf("binary file was scanned: %v", scanner.scannedPaths)
	}
}

func TestEnrichMissingFileWarns(testingHandle *testing.T) {
	temporaryDirectory := testingHandle.TempDir()
	record := types.FileRecord{
		AbsolutePath: filepath.Join(temporaryDirectory, "vanished.txt"),
		RelativePath: "vanished.txt",
		Included:     true,
	}

	enriched, warnings := aggregate.Enrich(record, aggregate.Options{TokenCounter: runeCounter{}})

	if len(warnings) != 1 {
		testingHandle.Fatalf("expected one warning, got %v", warnings)
	}
	if !strings.Contains(warnings[0], "vanished.txt") {
		testingHandle.Errorf("warning does not name the file: %q", warnings[0])
	}
	if !enriched.Binary {
		testingHandle.Error("unreadable file not flagged binary")
	}
	if enriched.Content != "" || enriched.TokenCounted {
		testingHandle.Error("unreadable file carries content or token count")
	}
}

func TestEnrichCounterFailureWarnsAndKeepsRecord(testingHandle *testing.T) {
	temporaryDirectory := testingHandle.TempDir()
	record := writeTestFile(testingHandle, temporaryDirectory, "notes.md", []byte("# notes\n"))

	enriched, warnings := aggregate.Enrich(record, aggregate.Options{TokenCounter: runeCounter{failure: errors.New("encoder offline")}})

	if len(warnings) != 1 || !strings.Contains(warnings[0], "notes.md") {
		testingHandle.Fatalf("expected one counting warning, got %v", warnings)
	}
	if enriched.TokenCounted {
		testingHandle.Error("failed count still marked counted")
	}
	if enriched.Content != "# notes\n" {
		testingHandle.Errorf("content lost on counter failure: %q", enriched.Content)
	}
}

func TestEnrichScannerFailureWarnsAndKeepsRecord(testingHandle *testing.T) {
	temporaryDirectory := testingHandle.TempDir()
	record := writeTestFile(testingHandle, temporaryDirectory, "app.cfg", []byte("SECRET=value1234\n"))
	scanner := &recordingScanner{failure: errors.New("ruleset corrupt")}

	enriched, warnings := aggregate.Enrich(record, aggregate.Options{SecretScanner: scanner})

	if len(warnings) != 1 || !strings.Contains(warnings[0], "app.cfg") {
		testingHandle.Fatalf("expected one scanning warning, got %v", warnings)
	}
	if len(enriched.SecretFindings) != 0 {
		testingHandle.Errorf("failed scan produced findings: %v", enriched.SecretFindings)
	}
	if enriched.Content == "" {
		testingHandle.Error("content lost on scanner failure")
	}
}

func TestEnrichFindingsNeverChangeInclusion(testingHandle *testing.T) {
	temporaryDirectory := testingHandle.TempDir()
	record := writeTestFile(testingHandle, temporaryDirectory, "creds.env", []byte("SECRET=value1234\n"))
	scanner := &recordingScanner{}

	enriched, warnings := aggregate.Enrich(record, aggregate.Options{SecretScanner: scanner})

	if len(warnings) != 0 {
		testingHandle.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(enriched.SecretFindings) != 1 {
		testingHandle.Fatalf("expected one finding, got %v", enriched.SecretFindings)
	}
	if !enriched.Included {
		testingHandle.Error("finding flipped inclusion")
	}
	if enriched.Content != "SECRET=value1234\n" {
		testingHandle.Error("finding altered content")
	}
}

func TestEnrichAllIsolatesFailures(testingHandle *testing.T) {
	temporaryDirectory := testingHandle.TempDir()
	records := []types.FileRecord{
		writeTestFile(testingHandle, temporaryDirectory, "first.txt", []byte("alpha\n")),
		{AbsolutePath: filepath.Join(temporaryDirectory, "missing.txt"), RelativePath: "missing.txt", Included: true},
		writeTestFile(testingHandle, temporaryDirectory, "last.txt", []byte("omega\n")),
	}

	enrichedRecords, warnings := aggregate.EnrichAll(records, aggregate.Options{TokenCounter: runeCounter{}})

	if len(enrichedRecords) != len(records) {
		testingHandle.Fatalf("expected %d records, got %d", len(records), len(enrichedRecords))
	}
	if len(warnings) != 1 {
		testingHandle.Fatalf("expected one warning, got %v", warnings)
	}
	if enrichedRecords[0].Content != "alpha\n" || enrichedRecords[2].Content != "omega\n" {
		testingHandle.Error("neighbouring records affected by one failure")
	}
	if !enrichedRecords[1].Binary {
		testingHandle.Error("failed record not flagged binary")
	}
}

func TestEnrichAllPreservesInputOrder(testingHandle *testing.T) {
	temporaryDirectory := testingHandle.TempDir()
	records := make([]types.FileRecord, 0, 24)
	for recordIndex := 0; recordIndex < 24; recordIndex++ {
		fileName := fmt.Sprintf("file-%02d.txt", recordIndex)
		records = append(records, writeTestFile(testingHandle, temporaryDirectory, fileName, []byte(fileName+"\n")))
	}

	enrichedRecords, warnings := aggregate.EnrichAll(records, aggregate.Options{TokenCounter: runeCounter{}})

	if len(warnings) != 0 {
		testingHandle.Fatalf("unexpected warnings: %v", warnings)
	}
	for recordIndex, enriched := range enrichedRecords {
		if enriched.RelativePath != records[recordIndex].RelativePath {
			testingHandle.Fatalf("record %d out of order: %q", recordIndex, enriched.RelativePath)
		}
		if enriched.Content != records[recordIndex].RelativePath+"\n" {
			testingHandle.Fatalf("record %d carries foreign content %q", recordIndex, enriched.Content)
		}
	}
}

func TestEnrichWithoutServices(testingHandle *testing.T) {
	temporaryDirectory := testingHandle.TempDir()
	record := writeTestFile(testingHandle, temporaryDirectory, "plain.txt", []byte("plain\n"))

	enriched, warnings := aggregate.Enrich(record, aggregate.Options{})

	if len(warnings) != 0 {
		testingHandle.Fatalf("unexpected warnings: %v", warnings)
	}
	if enriched.TokenCounted {
		testingHandle.Error("token count present without a counter")
	}
	if enriched.SecretFindings != nil {
		testingHandle.Error("findings present without a scanner")
	}
	if enriched.Content != "plain\n" {
		testingHandle.Errorf("unexpected content %q", enriched.Content)
	}
}
