// Package storage defines the Storage interface and common types for upload
// storage backends.
//
// New backends are added by implementing the Storage interface and registering
// with the factory via an init() function in the backend's own package:
//
//	func init() {
//	    storage.Register("mybackend", func(cfg *config.Config) (Storage, error) {
//	        return NewMyBackend(cfg)
//	    })
//	}
//
// The main package imports each backend with a blank import to trigger init().
// Adding a new backend requires no changes to the factory or main package,
// only a blank import in cmd/server/main.go.
package storage

import (
	"context"
	"io"
	"time"
)

// Storage defines the interface for all upload storage backends
type Storage interface {
	// Upload stores a file and returns the storage result with path and checksum
	Upload(ctx context.Context, path string, reader io.Reader, size int64) (*UploadResult, error)

	// Download retrieves a file and returns a reader
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file from storage
	Delete(ctx context.Context, path string) error

	// GetURL returns a URL the browser can fetch the file from.
	// For S3 this generates a signed URL valid for the specified TTL;
	// for local storage it returns a path served by the application.
	GetURL(ctx context.Context, path string, ttl time.Duration) (string, error)

	// Exists checks if a file exists at the specified path
	Exists(ctx context.Context, path string) (bool, error)

	// GetMetadata retrieves file metadata without downloading the entire file
	GetMetadata(ctx context.Context, path string) (*FileMetadata, error)
}

// UploadResult contains information about an uploaded file
type UploadResult struct {
	// Path is the storage path where the file was stored
	Path string

	// Size is the file size in bytes
	Size int64

	// Checksum is the SHA256 hash of the file contents
	Checksum string
}

// FileMetadata contains metadata about a stored file
type FileMetadata struct {
	Path         string
	Size         int64
	Checksum     string
	LastModified time.Time
}
