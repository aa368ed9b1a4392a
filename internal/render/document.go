package render

import (
	"encoding/json"

	"github.com/ctxpack/ctxpack/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "
)

// ProjectInfo describes the scanned project inside the JSON document.
type ProjectInfo struct {
	Name      string `json:"name"`
	Root      string `json:"root"`
	FileCount int    `json:"file_count"`
	Tree      string `json:"tree,omitempty"`
}

// FileEntry is one packed file inside the JSON document.
type FileEntry struct {
	Path           string                `json:"path"`
	SizeBytes      int64                 `json:"size_bytes"`
	SHA256         string                `json:"sha256,omitempty"`
	MimeType       string                `json:"mime_type,omitempty"`
	Binary         bool                  `json:"binary"`
	TokenCount     int                   `json:"token_count,omitempty"`
	SecretFindings []types.SecretFinding `json:"secret_findings,omitempty"`
	Content        string                `json:"content"`
}

// PartEntry is one ordered part inside the JSON document.
type PartEntry struct {
	Index      int         `json:"index"`
	TokenCount int         `json:"token_count"`
	Files      []FileEntry `json:"files"`
}

// Document is the structured output for a whole run. Warnings and parts are
// always present, never null.
type Document struct {
	Project         ProjectInfo `json:"project"`
	GeneratedAt     string      `json:"generated_at,omitempty"`
	Model           string      `json:"model,omitempty"`
	TotalTokenCount int         `json:"total_token_count"`
	Warnings        []string    `json:"warnings"`
	Parts           []PartEntry `json:"parts"`
}

// BuildDocument assembles the structured output from packed parts in the same
// record order the text format uses.
func BuildDocument(parts []types.OutputPart, options Options) Document {
	documentParts := make([]PartEntry, 0, len(parts))
	for _, part := range parts {
		fileEntries := make([]FileEntry, 0, len(part.Records))
		for _, record := range part.Records {
			fileEntries = append(fileEntries, FileEntry{
				Path:           record.RelativePath,
				SizeBytes:      record.SizeBytes,
				SHA256:         record.ContentSHA256,
				MimeType:       record.MimeType,
				Binary:         record.Binary,
				TokenCount:     record.TokenCount,
				SecretFindings: record.SecretFindings,
				Content:        record.Content,
			})
		}
		documentParts = append(documentParts, PartEntry{
			Index:      part.Index,
			TokenCount: part.TokenCount,
			Files:      fileEntries,
		})
	}

	warnings := options.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return Document{
		Project: ProjectInfo{
			Name:      options.ProjectName,
			Root:      options.RootPath,
			FileCount: types.TotalFiles(parts),
			Tree:      options.Tree,
		},
		GeneratedAt:     options.GeneratedAt,
		Model:           options.Model,
		TotalTokenCount: types.TotalTokens(parts),
		Warnings:        warnings,
		Parts:           documentParts,
	}
}

// RenderJSONDocument marshals the structured output with two-space indenting.
func RenderJSONDocument(parts []types.OutputPart, options Options) (string, error) {
	document := BuildDocument(parts, options)
	encoded, jsonEncodeError := json.MarshalIndent(document, indentPrefix, indentSpacer)
	if jsonEncodeError != nil {
		return "", jsonEncodeError
	}
	return string(encoded), nil
}
