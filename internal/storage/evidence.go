// evidence.go adapts a Storage backend to the compliance.EvidenceUploader
// port. It owns the object key layout and enforces the upload bounds (size
// ceiling, allowed image types) before anything touches the backend.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/eastern-erp/eastern-erp/internal/compliance"
	"github.com/eastern-erp/eastern-erp/internal/config"
)

// EvidenceStore uploads audit evidence images through a Storage backend.
type EvidenceStore struct {
	backend      Storage
	maxBytes     int64
	allowedTypes map[string]string // content type -> file extension
}

// NewEvidenceStore creates an EvidenceStore over the given backend.
func NewEvidenceStore(backend Storage, cfg *config.EvidenceConfig) *EvidenceStore {
	allowed := make(map[string]string, len(cfg.AllowedTypes))
	for _, ct := range cfg.AllowedTypes {
		allowed[ct] = extensionFor(ct)
	}
	return &EvidenceStore{
		backend:      backend,
		maxBytes:     cfg.MaxUploadBytes,
		allowedTypes: allowed,
	}
}

// Upload validates the file and stores it under the audit's evidence prefix.
// The returned reference is the storage path, which is what gets recorded on
// the checklist item.
func (e *EvidenceStore) Upload(ctx context.Context, auditID, itemCode string, f compliance.EvidenceFile) (string, error) {
	if f.Size > e.maxBytes {
		return "", &compliance.EvidenceUploadError{
			Reason: fmt.Sprintf("file is %d bytes, limit is %d", f.Size, e.maxBytes),
		}
	}

	ext, ok := e.allowedTypes[f.ContentType]
	if !ok {
		return "", &compliance.EvidenceUploadError{
			Reason: fmt.Sprintf("content type %q is not an accepted image type", f.ContentType),
		}
	}

	key := EvidenceKey(auditID, itemCode, uuid.New().String()+ext)

	// The size ceiling was checked against the declared size; limit the read
	// too so a lying client cannot stream past it.
	limited := &limitedReader{r: f.Reader, remaining: e.maxBytes + 1}

	result, err := e.backend.Upload(ctx, key, limited, f.Size, f.ContentType)
	if err != nil {
		return "", &compliance.EvidenceUploadError{Reason: "storage backend rejected the upload", Err: err}
	}
	if result.Size > e.maxBytes {
		_ = e.backend.Delete(ctx, key)
		return "", &compliance.EvidenceUploadError{
			Reason: fmt.Sprintf("file exceeded the %d byte limit", e.maxBytes),
		}
	}

	return result.Path, nil
}

// Remove deletes one stored evidence object.
func (e *EvidenceStore) Remove(ctx context.Context, ref string) error {
	return e.backend.Delete(ctx, ref)
}

// RemoveAuditEvidence deletes everything stored for one audit.
func (e *EvidenceStore) RemoveAuditEvidence(ctx context.Context, auditID string) error {
	return e.backend.DeletePrefix(ctx, EvidencePrefix(auditID))
}

// EvidencePrefix returns the storage prefix holding an audit's evidence.
func EvidencePrefix(auditID string) string {
	return path.Join("audits", auditID, "evidence")
}

// EvidenceKey builds the storage key for one evidence file.
func EvidenceKey(auditID, itemCode, filename string) string {
	return path.Join(EvidencePrefix(auditID), itemCode, filename)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		// Derive from the subtype
		if i := strings.LastIndex(contentType, "/"); i >= 0 && i < len(contentType)-1 {
			return "." + contentType[i+1:]
		}
		return ""
	}
}

// limitedReader reads at most remaining bytes, then errors out. Unlike
// io.LimitReader it fails loudly instead of truncating, so an oversize stream
// aborts the upload rather than storing a clipped image.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		return 0, fmt.Errorf("upload exceeds size limit")
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}
