// errors.go defines the error taxonomy surfaced by the lifecycle controller.
// Every gateway failure propagates to the caller; nothing is retried and
// nothing is swallowed. Handlers map these onto HTTP statuses.
package compliance

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation references an audit id
	// that no longer exists in the store.
	ErrNotFound = errors.New("audit not found")

	// ErrAuditSubmitted is returned when a mutation is attempted against
	// an audit that has already been submitted. Submission is terminal.
	ErrAuditSubmitted = errors.New("audit is submitted and read-only")

	// ErrEvidenceLimitExceeded is returned when attaching evidence to an
	// item that already holds the configured maximum number of images.
	ErrEvidenceLimitExceeded = errors.New("evidence limit exceeded for item")

	// ErrSaveInFlight is returned when a mutating call overlaps another
	// mutating call on the same audit. Two in-flight saves could otherwise
	// race and overwrite each other's evidence arrays, so the later call
	// is rejected rather than queued; the caller retries after the first
	// save resolves.
	ErrSaveInFlight = errors.New("another save for this audit is in flight")
)

// ValidationError reports missing or malformed audit data that blocks the
// attempted operation (typically Submit).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a failure from the persistence gateway. The
// in-memory audit is left intact so the user can retry manually.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// EvidenceUploadError wraps a rejection or transport failure from the
// evidence upload gateway.
type EvidenceUploadError struct {
	Reason string
	Err    error
}

func (e *EvidenceUploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("evidence upload failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("evidence upload failed: %s", e.Reason)
}

func (e *EvidenceUploadError) Unwrap() error { return e.Err }
