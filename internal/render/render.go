// Package render turns packed parts into the final text or JSON output. Both
// formats present the same records in the same order; only the framing
// differs.
package render

import (
	"fmt"
	"strings"

	"github.com/ctxpack/ctxpack/internal/types"
	"github.com/ctxpack/ctxpack/internal/utils"
)

const (
	metaPromptFormat = "The following text is a collection of source code files from the %s project. " +
		"Each file is delimited by a header line starting with \"--- FILE: [filepath]\".\n" +
		"Use only this content as the source of truth when answering questions.\n\n"
	treeSectionFormat    = "The project structure is as follows:\n%s\n\n"
	contentOpenSentinel  = "<<<\n"
	contentCloseSentinel = ">>>\n"
	fileBlockFormat      = "\n--- FILE: %s ---\n"
	binaryMimeLineFormat = "Mime Type: %s (%s)\n"
	binaryContentOmitted = "(binary content omitted)"
)

// Options carries the run-level framing the renderer needs. Tree holds the
// pre-built listing of included paths; an empty string omits the tree section.
type Options struct {
	ProjectName   string
	RootPath      string
	IncludeHeader bool
	Tree          string
	Model         string
	GeneratedAt   string
	Warnings      []string
}

// RenderTextParts renders one string per part. The meta-prompt header and the
// tree appear in the first part only; the closing sentinel ends the last part.
func RenderTextParts(parts []types.OutputPart, options Options) []string {
	renderedParts := make([]string, 0, len(parts))
	for partPosition, part := range parts {
		var builder strings.Builder
		if partPosition == 0 {
			writePreamble(&builder, options)
		}
		for _, record := range part.Records {
			writeFileBlock(&builder, record)
		}
		if partPosition == len(parts)-1 {
			builder.WriteString(contentCloseSentinel)
		}
		renderedParts = append(renderedParts, builder.String())
	}
	return renderedParts
}

func writePreamble(builder *strings.Builder, options Options) {
	if options.IncludeHeader {
		builder.WriteString(fmt.Sprintf(metaPromptFormat, options.ProjectName))
	}
	if options.Tree != "" {
		builder.WriteString(fmt.Sprintf(treeSectionFormat, options.Tree))
	}
	builder.WriteString(contentOpenSentinel)
}

func writeFileBlock(builder *strings.Builder, record types.EnrichedFileRecord) {
	builder.WriteString(fmt.Sprintf(fileBlockFormat, record.RelativePath))
	if record.Binary {
		if record.MimeType != "" {
			builder.WriteString(fmt.Sprintf(binaryMimeLineFormat, record.MimeType, utils.FormatFileSize(record.SizeBytes)))
		}
		builder.WriteString(binaryContentOmitted)
		builder.WriteString("\n")
		return
	}
	builder.WriteString(record.Content)
	builder.WriteString("\n")
}
