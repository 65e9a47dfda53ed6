package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrInvalidPath is returned for object paths that are absolute or climb out of the root.
var ErrInvalidPath = errors.New("invalid storage path")

// Client defines the interface for blob storage backends
type Client interface {
	// Upload writes content to a file path, replacing any existing object
	Upload(ctx context.Context, path string, content io.Reader) error

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// Exists checks if a file exists
	Exists(ctx context.Context, path string) (bool, error)
}

// CleanPath normalizes an object path to slash-separated, relative form.
func CleanPath(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}
