// lifecycle.go implements the audit lifecycle controller: create, draft
// saves, the one-way submit transition, evidence attachment, and deletion.
//
// Concurrency model: single writer per audit. The controller keeps an
// in-flight set keyed by audit identity and rejects an overlapping mutating
// call with ErrSaveInFlight instead of queueing it. The original application
// disabled its timer-based auto-save precisely because two racing saves
// could overwrite each other's evidence arrays; the guard makes that
// interleaving impossible without reintroducing a timer.
package compliance

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ListFilter narrows List results. Nil fields match everything.
type ListFilter struct {
	Company     *string
	Status      *Status
	TemplateKey *string
	CreatedBy   *string
	Limit       int
	Offset      int
}

// Store is the persistence gateway consumed by the Controller. Create
// returns the identifier assigned by the store. Update must persist the
// full checklist array (never a delta) and must refuse to modify an audit
// whose stored status is already submitted, returning ErrAuditSubmitted.
// Get returns ErrNotFound for unknown ids.
type Store interface {
	Create(ctx context.Context, a *Audit) (string, error)
	Update(ctx context.Context, a *Audit) error
	Get(ctx context.Context, id string) (*Audit, error)
	List(ctx context.Context, f ListFilter) ([]*Audit, error)
	Delete(ctx context.Context, id string) error
}

// EvidenceFile is an image handed to the evidence gateway.
type EvidenceFile struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// EvidenceUploader is the evidence upload gateway: it stores an image under
// the audit/item it belongs to and returns a durable reference URL.
type EvidenceUploader interface {
	Upload(ctx context.Context, auditID, itemCode string, f EvidenceFile) (string, error)
}

// Controller governs audit lifecycle transitions and owns the business
// rules around them. It is safe for concurrent use; overlapping mutations
// of the same audit are rejected, not serialised.
type Controller struct {
	store    Store
	uploader EvidenceUploader

	maxEvidencePerItem int
	companies          []string

	mu       sync.Mutex
	inflight map[string]bool

	now func() time.Time // injectable for tests
}

// NewController wires a Controller to its gateways. companies is the
// enumerated tenant list audits must belong to; maxEvidencePerItem bounds
// the evidence sequence on every checklist item (0 falls back to 5, the
// limit the application has always shipped with).
func NewController(store Store, uploader EvidenceUploader, companies []string, maxEvidencePerItem int) *Controller {
	if maxEvidencePerItem <= 0 {
		maxEvidencePerItem = 5
	}
	return &Controller{
		store:              store,
		uploader:           uploader,
		maxEvidencePerItem: maxEvidencePerItem,
		companies:          companies,
		inflight:           make(map[string]bool),
		now:                time.Now,
	}
}

// guardKey identifies an audit for the in-flight set. Unsaved audits have
// no id yet, so the pointer stands in for identity until Create assigns one.
func guardKey(a *Audit) string {
	if a.ID != "" {
		return a.ID
	}
	return fmt.Sprintf("unsaved-%p", a)
}

// acquire marks the audit as having a mutation in flight. Returns
// ErrSaveInFlight when one already is.
func (c *Controller) acquire(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key] {
		return ErrSaveInFlight
	}
	c.inflight[key] = true
	return nil
}

func (c *Controller) release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}

// Create validates a new audit, seeds its checklist from the template when
// the caller did not supply one, computes the initial score, and persists
// it. On success the store-assigned id is written back to a. The audit
// always starts as a draft regardless of the status in the payload.
func (c *Controller) Create(ctx context.Context, a *Audit) error {
	key := guardKey(a)
	if err := c.acquire(key); err != nil {
		return err
	}
	defer c.release(key)

	if a.ID != "" {
		return &ValidationError{Field: "id", Reason: "audit already has an id; use SaveDraft"}
	}
	if err := c.validateCompany(a.Company); err != nil {
		return err
	}

	tmpl, ok := TemplateByKey(a.TemplateKey)
	if !ok {
		return &ValidationError{Field: "template_key", Reason: fmt.Sprintf("unknown template %q", a.TemplateKey)}
	}
	a.TemplateVersion = tmpl.Version
	if len(a.Checklist) == 0 {
		a.Checklist = tmpl.Checklist()
	}
	if err := validateChecklist(a.Checklist); err != nil {
		return err
	}

	a.Status = StatusDraft
	a.SubmittedAt = nil
	a.Score = CalculateScore(a.Checklist)
	now := c.now()
	a.CreatedAt = now
	a.UpdatedAt = now

	id, err := c.store.Create(ctx, a)
	if err != nil {
		return &PersistenceError{Op: "create", Err: err}
	}
	a.ID = id
	return nil
}

// SaveDraft recomputes the score and persists the audit. Only valid while
// the audit is a draft. When the audit has no id yet this behaves as
// Create. Repeated calls with unchanged data have no effect beyond a fresh
// UpdatedAt.
func (c *Controller) SaveDraft(ctx context.Context, a *Audit) error {
	key := guardKey(a)
	if err := c.acquire(key); err != nil {
		return err
	}
	defer c.release(key)

	return c.saveDraftLocked(ctx, a)
}

// saveDraftLocked is SaveDraft without guard acquisition, for callers that
// already hold the audit's in-flight slot (Submit, AttachEvidence).
func (c *Controller) saveDraftLocked(ctx context.Context, a *Audit) error {
	if a.Status == StatusSubmitted {
		return ErrAuditSubmitted
	}
	if err := validateChecklist(a.Checklist); err != nil {
		return err
	}

	a.Score = CalculateScore(a.Checklist)
	a.UpdatedAt = c.now()

	if a.ID == "" {
		if err := c.validateCompany(a.Company); err != nil {
			return err
		}
		a.Status = StatusDraft
		if a.CreatedAt.IsZero() {
			a.CreatedAt = a.UpdatedAt
		}
		id, err := c.store.Create(ctx, a)
		if err != nil {
			return &PersistenceError{Op: "create", Err: err}
		}
		a.ID = id
		return nil
	}

	if err := c.store.Update(ctx, a); err != nil {
		if err == ErrAuditSubmitted || err == ErrNotFound {
			return err
		}
		return &PersistenceError{Op: "update", Err: err}
	}
	return nil
}

// Submit performs the one-way draft → submitted transition. Required
// metadata (auditor name, audit date, company) must be present. An audit
// without an id is created first so the submitted record has one. On any
// persistence failure the in-memory audit stays a draft so the user can
// retry.
func (c *Controller) Submit(ctx context.Context, a *Audit) error {
	key := guardKey(a)
	if err := c.acquire(key); err != nil {
		return err
	}
	defer c.release(key)

	if a.Status == StatusSubmitted {
		return ErrAuditSubmitted
	}
	if strings.TrimSpace(a.AuditorName) == "" {
		return &ValidationError{Field: "auditor_name", Reason: "required to submit"}
	}
	if strings.TrimSpace(a.AuditDate) == "" {
		return &ValidationError{Field: "audit_date", Reason: "required to submit"}
	}
	if err := c.validateCompany(a.Company); err != nil {
		return err
	}
	if err := validateChecklist(a.Checklist); err != nil {
		return err
	}

	if a.ID == "" {
		if err := c.saveDraftLocked(ctx, a); err != nil {
			return err
		}
	}

	now := c.now()
	a.Status = StatusSubmitted
	a.SubmittedAt = &now
	a.Score = CalculateScore(a.Checklist)
	a.UpdatedAt = now

	if err := c.store.Update(ctx, a); err != nil {
		// Failed submits leave the draft intact and unsubmitted.
		a.Status = StatusDraft
		a.SubmittedAt = nil
		if err == ErrAuditSubmitted || err == ErrNotFound {
			return err
		}
		return &PersistenceError{Op: "submit", Err: err}
	}
	return nil
}

// AttachEvidence uploads an image for the given checklist item, appends the
// returned reference to the item's evidence list, and persists the audit by
// replaying the full checklist array. When the audit has no id yet an
// implicit draft save runs first to obtain one; the returned bool reports
// whether that happened so callers can tell the user.
//
// The cap check happens before the upload so a rejected attach leaves both
// the evidence list and the object store untouched.
func (c *Controller) AttachEvidence(ctx context.Context, a *Audit, itemCode string, f EvidenceFile) (savedFirst bool, err error) {
	key := guardKey(a)
	if err := c.acquire(key); err != nil {
		return false, err
	}
	defer c.release(key)

	if a.Status == StatusSubmitted {
		return false, ErrAuditSubmitted
	}
	item := a.Item(itemCode)
	if item == nil {
		return false, &ValidationError{Field: "item_code", Reason: fmt.Sprintf("no checklist item %q", itemCode)}
	}
	if len(item.Evidence) >= c.maxEvidencePerItem {
		return false, ErrEvidenceLimitExceeded
	}

	if a.ID == "" {
		if err := c.saveDraftLocked(ctx, a); err != nil {
			return false, err
		}
		savedFirst = true
		// Create invalidated the pointer-based guard key; the id-based key
		// is only contended once this call returns, so no re-acquire.
	}

	ref, err := c.uploader.Upload(ctx, a.ID, itemCode, f)
	if err != nil {
		if _, ok := err.(*EvidenceUploadError); ok {
			return savedFirst, err
		}
		return savedFirst, &EvidenceUploadError{Reason: "gateway failure", Err: err}
	}

	item.Evidence = append(item.Evidence, ref)
	if err := c.saveDraftLocked(ctx, a); err != nil {
		// The reference stays on the in-memory draft; a manual retry of the
		// save persists it without re-uploading the image.
		return savedFirst, err
	}
	return savedFirst, nil
}

// Get loads an audit and reconciles its stored checklist against the
// current template so template additions render as unanswered items and
// removed questions surface as legacy entries.
func (c *Controller) Get(ctx context.Context, id string) (*Audit, error) {
	a, err := c.store.Get(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, &PersistenceError{Op: "get", Err: err}
	}
	if tmpl, ok := TemplateByKey(a.TemplateKey); ok && a.Status == StatusDraft {
		a.Checklist = Reconcile(a.Checklist, tmpl)
		a.Score = CalculateScore(a.Checklist)
	}
	return a, nil
}

// List returns audits matching the filter.
func (c *Controller) List(ctx context.Context, f ListFilter) ([]*Audit, error) {
	audits, err := c.store.List(ctx, f)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return audits, nil
}

// Delete removes an audit. Irreversible; authorization is the caller's
// concern.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.acquire(id); err != nil {
		return err
	}
	defer c.release(id)

	if err := c.store.Delete(ctx, id); err != nil {
		if err == ErrNotFound {
			return err
		}
		return &PersistenceError{Op: "delete", Err: err}
	}
	return nil
}

// MaxEvidencePerItem exposes the configured cap for handlers that report it
// to clients.
func (c *Controller) MaxEvidencePerItem() int { return c.maxEvidencePerItem }

func (c *Controller) validateCompany(company string) error {
	if strings.TrimSpace(company) == "" {
		return &ValidationError{Field: "company", Reason: "required"}
	}
	if len(c.companies) == 0 {
		return nil
	}
	for _, known := range c.companies {
		if company == known {
			return nil
		}
	}
	return &ValidationError{Field: "company", Reason: fmt.Sprintf("unknown company %q", company)}
}
