package utils

import (
	"net/http"
)

// DetectMimeType returns the MIME type of the file at filePath.
// It sniffs the file head and uses http.DetectContentType.
// If the file cannot be read, an empty string is returned.
func DetectMimeType(filePath string) string {
	head, sniffError := sniffFileHead(filePath)
	if sniffError != nil {
		return ""
	}
	return http.DetectContentType(head)
}
