// Package clipboard provides access to the system clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrNothingToCopy reports a copy request with no rendered parts.
var ErrNothingToCopy = errors.New("no rendered output to copy")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a clipboard service implementation.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	return clipboard.WriteAll(text)
}

var _ Copier = (*Service)(nil)

// CopyFirstPart places the first rendered part on the clipboard and reports
// how many later parts were left off so the caller can warn about them.
func CopyFirstPart(copier Copier, renderedParts []string) (int, error) {
	if len(renderedParts) == 0 {
		return 0, ErrNothingToCopy
	}
	if copyError := copier.Copy(renderedParts[0]); copyError != nil {
		return 0, copyError
	}
	return len(renderedParts) - 1, nil
}
