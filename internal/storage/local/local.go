// Package local implements the local filesystem storage backend for evidence
// images. This backend is intended for development and single-node
// deployments only; multiple server instances would need a shared filesystem.
// For production, use the s3 backend.
package local

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eastern-erp/eastern-erp/internal/config"
	"github.com/eastern-erp/eastern-erp/internal/storage"
	"github.com/eastern-erp/eastern-erp/pkg/checksum"
)

func init() {
	// Register local storage backend
	storage.Register("local", func(cfg *config.Config) (storage.Storage, error) {
		return New(&cfg.Storage.Local, cfg.Server.BaseURL)
	})
}

// LocalStorage implements the Storage interface for local filesystem storage
type LocalStorage struct {
	basePath      string
	serveDirectly bool
	baseURL       string
}

// New creates a new local filesystem storage backend
func New(cfg *config.LocalStorageConfig, serverBaseURL string) (*LocalStorage, error) {
	// Ensure base path exists
	if err := os.MkdirAll(cfg.BasePath, 0750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath:      cfg.BasePath,
		serveDirectly: cfg.ServeDirectly,
		baseURL:       serverBaseURL,
	}, nil
}

// Upload stores a file in the local filesystem. The content type is not
// persisted; downloads infer it from the file extension.
func (s *LocalStorage) Upload(ctx context.Context, path string, reader io.Reader, size int64, contentType string) (*storage.UploadResult, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(path))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	// Calculate checksum while writing
	hasher := sha256.New()
	multiWriter := io.MultiWriter(file, hasher)

	written, err := io.Copy(multiWriter, reader)
	if err != nil {
		// Clean up partial file
		_ = os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	sum := hex.EncodeToString(hasher.Sum(nil))

	return &storage.UploadResult{
		Path:     path,
		Size:     written,
		Checksum: sum,
	}, nil
}

// Download retrieves a file from the local filesystem
func (s *LocalStorage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(path))

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes a file from the local filesystem
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(path))

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, consider it deleted
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	// Try to remove empty parent directories (best effort)
	dir := filepath.Dir(fullPath)
	for dir != s.basePath {
		if err := os.Remove(dir); err != nil {
			break // Directory not empty or other error, stop trying
		}
		dir = filepath.Dir(dir)
	}

	return nil
}

// DeletePrefix removes every file under the prefix directory.
func (s *LocalStorage) DeletePrefix(ctx context.Context, prefix string) error {
	cleaned := filepath.FromSlash(strings.TrimSuffix(prefix, "/"))
	if cleaned == "" || cleaned == "." {
		return fmt.Errorf("refusing to delete empty prefix")
	}
	fullPath := filepath.Join(s.basePath, cleaned)

	// Keep the deletion inside the base path
	rel, err := filepath.Rel(s.basePath, fullPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("prefix escapes storage root: %s", prefix)
	}

	if err := os.RemoveAll(fullPath); err != nil {
		return fmt.Errorf("failed to delete prefix: %w", err)
	}
	return nil
}

// GetURL returns a URL for downloading the file
// For local storage with ServeDirectly enabled, this returns a URL served
// through the API. Otherwise it returns the local file path.
func (s *LocalStorage) GetURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	exists, err := s.Exists(ctx, path)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("file not found: %s", path)
	}

	if s.serveDirectly {
		// Served by the files endpoint
		return fmt.Sprintf("%s/api/v1/files/%s", s.baseURL, path), nil
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(path))
	return fmt.Sprintf("file://%s", fullPath), nil
}

// Exists checks if a file exists at the specified path
func (s *LocalStorage) Exists(ctx context.Context, path string) (bool, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(path))

	_, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}

	return true, nil
}

// GetMetadata retrieves file metadata without downloading the file
func (s *LocalStorage) GetMetadata(ctx context.Context, path string) (*storage.FileMetadata, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(path))

	stat, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to get file metadata: %w", err)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for checksum: %w", err)
	}
	defer file.Close()

	sum, err := checksum.CalculateSHA256(file)
	if err != nil {
		return nil, err
	}

	return &storage.FileMetadata{
		Path:         path,
		Size:         stat.Size(),
		Checksum:     sum,
		LastModified: stat.ModTime(),
	}, nil
}
