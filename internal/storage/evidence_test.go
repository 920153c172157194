package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/eastern-erp/eastern-erp/internal/compliance"
	"github.com/eastern-erp/eastern-erp/internal/config"
)

type recordingBackend struct {
	uploads  []string
	deletes  []string
	prefixes []string
	failNext bool
}

func (b *recordingBackend) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) (*UploadResult, error) {
	if b.failNext {
		return nil, errors.New("backend unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b.uploads = append(b.uploads, path)
	return &UploadResult{Path: path, Size: int64(len(data))}, nil
}

func (b *recordingBackend) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (b *recordingBackend) Delete(ctx context.Context, path string) error {
	b.deletes = append(b.deletes, path)
	return nil
}

func (b *recordingBackend) DeletePrefix(ctx context.Context, prefix string) error {
	b.prefixes = append(b.prefixes, prefix)
	return nil
}

func (b *recordingBackend) GetURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	return "https://example.com/" + path, nil
}

func (b *recordingBackend) Exists(ctx context.Context, path string) (bool, error) {
	return true, nil
}

func (b *recordingBackend) GetMetadata(ctx context.Context, path string) (*FileMetadata, error) {
	return nil, errors.New("not implemented")
}

func newEvidenceStore(backend Storage) *EvidenceStore {
	return NewEvidenceStore(backend, &config.EvidenceConfig{
		MaxPerItem:     5,
		MaxUploadBytes: 64,
		AllowedTypes:   []string{"image/jpeg", "image/png", "image/webp"},
	})
}

func jpegFile(content string) compliance.EvidenceFile {
	return compliance.EvidenceFile{
		Reader:      strings.NewReader(content),
		Size:        int64(len(content)),
		ContentType: "image/jpeg",
		Filename:    "photo.jpg",
	}
}

func TestEvidenceUpload_Success(t *testing.T) {
	backend := &recordingBackend{}
	store := newEvidenceStore(backend)

	ref, err := store.Upload(context.Background(), "audit-1", "C1", jpegFile("image bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(ref, "audits/audit-1/evidence/C1/") {
		t.Errorf("ref = %s, want audits/audit-1/evidence/C1/ prefix", ref)
	}
	if !strings.HasSuffix(ref, ".jpg") {
		t.Errorf("ref = %s, want .jpg extension", ref)
	}
	if len(backend.uploads) != 1 {
		t.Errorf("uploads = %d, want 1", len(backend.uploads))
	}
}

func TestEvidenceUpload_RejectsOversizeDeclaredSize(t *testing.T) {
	backend := &recordingBackend{}
	store := newEvidenceStore(backend)

	f := jpegFile("x")
	f.Size = 1024 // over the 64 byte test limit

	_, err := store.Upload(context.Background(), "audit-1", "C1", f)
	var uploadErr *compliance.EvidenceUploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("err = %v, want EvidenceUploadError", err)
	}
	if len(backend.uploads) != 0 {
		t.Error("backend should not be called for oversize files")
	}
}

func TestEvidenceUpload_RejectsLyingClient(t *testing.T) {
	backend := &recordingBackend{}
	store := newEvidenceStore(backend)

	// Declared size fits, actual stream is over the limit.
	content := strings.Repeat("a", 200)
	f := compliance.EvidenceFile{
		Reader:      strings.NewReader(content),
		Size:        10,
		ContentType: "image/jpeg",
		Filename:    "photo.jpg",
	}

	_, err := store.Upload(context.Background(), "audit-1", "C1", f)
	var uploadErr *compliance.EvidenceUploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("err = %v, want EvidenceUploadError", err)
	}
}

func TestEvidenceUpload_RejectsBadContentType(t *testing.T) {
	backend := &recordingBackend{}
	store := newEvidenceStore(backend)

	f := jpegFile("data")
	f.ContentType = "application/pdf"

	_, err := store.Upload(context.Background(), "audit-1", "C1", f)
	var uploadErr *compliance.EvidenceUploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("err = %v, want EvidenceUploadError", err)
	}
	if len(backend.uploads) != 0 {
		t.Error("backend should not be called for rejected content types")
	}
}

func TestEvidenceUpload_BackendFailureWrapped(t *testing.T) {
	backend := &recordingBackend{failNext: true}
	store := newEvidenceStore(backend)

	_, err := store.Upload(context.Background(), "audit-1", "C1", jpegFile("data"))
	var uploadErr *compliance.EvidenceUploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("err = %v, want EvidenceUploadError", err)
	}
	if uploadErr.Err == nil {
		t.Error("expected wrapped backend error")
	}
}

func TestRemoveAuditEvidence(t *testing.T) {
	backend := &recordingBackend{}
	store := newEvidenceStore(backend)

	if err := store.RemoveAuditEvidence(context.Background(), "audit-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backend.prefixes) != 1 || backend.prefixes[0] != "audits/audit-1/evidence" {
		t.Errorf("prefixes = %v, want [audits/audit-1/evidence]", backend.prefixes)
	}
}

func TestEvidenceKeyLayout(t *testing.T) {
	key := EvidenceKey("a1", "C3", "f.png")
	if key != "audits/a1/evidence/C3/f.png" {
		t.Errorf("key = %s", key)
	}
	if EvidencePrefix("a1") != "audits/a1/evidence" {
		t.Errorf("prefix = %s", EvidencePrefix("a1"))
	}
}
