package fetch

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.lsp.dev/uri"
)

// File serves file: URIs from the local filesystem.
type File struct{}

// NewFile creates a filesystem fetcher.
func NewFile() *File {
	return &File{}
}

// Fetch implements Fetcher. The URI must use the file scheme; a missing
// file maps to NotFoundError.
func (f *File) Fetch(_ context.Context, rawURI string) (string, error) {
	if !strings.HasPrefix(rawURI, "file:") {
		return "", &UnsupportedSchemeError{URI: rawURI}
	}
	path := uri.New(rawURI).Filename()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{URI: rawURI}
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
