// Package clipboard places the generated artifact on the system clipboard.
package clipboard

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
)

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a Clipboard service implementation.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	return clipboard.WriteAll(text)
}

// CopyFile reads the file at path and hands its text to copier.
func CopyFile(copier Copier, path string) error {
	// #nosec G304
	fileBytes, readError := os.ReadFile(path)
	if readError != nil {
		return fmt.Errorf("read %s for clipboard: %w", path, readError)
	}
	if copyError := copier.Copy(string(fileBytes)); copyError != nil {
		return fmt.Errorf("copy %s to clipboard: %w", path, copyError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
