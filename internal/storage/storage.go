// Package storage provides temporary and persistent file storage for
// generated narration artifacts. It defines the Storage port and
// implementations for local disk and S3.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for temporary scratch files during narration
// processing and persistent delivery of generated artifacts.
type Storage interface {
	// SaveTemp saves data to a temporary file and returns the file path.
	// The name parameter is used as a hint for the filename.
	SaveTemp(ctx context.Context, name string, data io.Reader) (path string, err error)

	// LoadTemp reads a temporary file and returns a reader.
	// The caller is responsible for closing the returned ReadCloser.
	LoadTemp(ctx context.Context, path string) (io.ReadCloser, error)

	// CleanupTemp removes the specified temporary files.
	// It continues cleanup even if some files fail to delete.
	CleanupTemp(ctx context.Context, paths []string) error

	// Upload stores data under the given object key with the given content
	// type and returns the public URL.
	// Returns ErrS3NotConfigured if no object store is configured.
	Upload(ctx context.Context, key, contentType string, data io.Reader) (url string, err error)

	// Delete removes the object stored under key.
	// Returns ErrS3NotConfigured if no object store is configured.
	Delete(ctx context.Context, key string) error
}
