// Package storage defines the Storage interface and common types for the
// evidence image backends.
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
// The router imports each backend with a blank import to trigger init().
// Adding a new backend requires no changes to the factory itself.
package storage

import (
	"context"
	"io"
	"time"
)

// Storage defines the interface for all evidence storage backends.
// Implementations must support upload, download, delete, and URL generation.
type Storage interface {
	// Upload stores a file and returns the storage result with path and checksum.
	// contentType is recorded so downloads can be served with the right header.
	Upload(ctx context.Context, path string, reader io.Reader, size int64, contentType string) (*UploadResult, error)

	// Download retrieves a file and returns a reader
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file from storage
	Delete(ctx context.Context, path string) error

	// DeletePrefix removes every file under the prefix. Used when a draft
	// audit is deleted to clean up its evidence in one call.
	DeletePrefix(ctx context.Context, prefix string) error

	// GetURL returns a direct download URL
	// For S3 this generates a pre-signed URL valid for the specified TTL
	// For local storage this returns a path served by the API
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
	// Path is the storage path of the file
	Path string

	// Size is the file size in bytes
	Size int64

	// Checksum is the SHA256 hash of the file contents
	Checksum string

	// ContentType is the MIME type recorded at upload time, if known
	ContentType string

	// LastModified is the timestamp when the file was last modified
	LastModified time.Time
}
