// Package compliance implements the audit checklist domain for Eastern ERP:
// checklist items, audit aggregates, score calculation, static question
// templates, and the draft/submitted lifecycle controller.
//
// The package is deliberately free of HTTP and SQL concerns. Persistence and
// evidence upload are consumed through the Store and EvidenceUploader
// interfaces so the controller can be exercised in isolation and the gateways
// swapped per deployment (Postgres + S3 in production, fakes in tests).
package compliance

import (
	"fmt"
	"strings"
	"time"
)

// Response is the answer recorded against a single checklist question.
// The empty string means the question has not been answered yet. An
// unanswered question is NOT the same as NotApplicable: unset responses
// still count against the audit score (see CalculateScore).
type Response string

const (
	ResponseUnset Response = ""
	ResponseYes   Response = "yes"
	ResponseNo    Response = "no"
	ResponseNA    Response = "na"
)

// Valid reports whether r is one of the four recognised response values.
func (r Response) Valid() bool {
	switch r {
	case ResponseUnset, ResponseYes, ResponseNo, ResponseNA:
		return true
	}
	return false
}

// ChecklistItem is one compliance question with its recorded answer, a
// free-text remark, and the evidence image references attached to it.
// Evidence entries are opaque URLs returned by the evidence store; the item
// never inspects them.
type ChecklistItem struct {
	Code     string   `json:"code"`
	Question string   `json:"question"`
	Response Response `json:"response"`
	Remark   string   `json:"remark"`
	Evidence []string `json:"evidence,omitempty"`

	// Legacy marks an item that was stored against an earlier template
	// version and no longer appears in the current template. Legacy items
	// are preserved (and still scored) but template-driven rendering skips
	// them. Set by Reconcile.
	Legacy bool `json:"legacy,omitempty"`
}

// Status is the audit lifecycle state. The transition draft → submitted is
// one-way; there is no further state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
)

// Audit is a single compliance-checklist submission tied to a company,
// location, and date. Metadata fields are free-form and mutable while the
// audit is a draft; everything locks on submit.
type Audit struct {
	ID              string          `json:"id,omitempty"`
	Company         string          `json:"company"`
	AuditorName     string          `json:"auditor_name"`
	AuditDate       string          `json:"audit_date"`
	Location        string          `json:"location"`
	AuditScope      string          `json:"audit_scope"`
	TemplateKey     string          `json:"template_key"`
	TemplateVersion int             `json:"template_version"`
	Checklist       []ChecklistItem `json:"checklist"`
	Status          Status          `json:"status"`
	Score           ScoreData       `json:"score"`
	CreatedBy       string          `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
}

// Item returns a pointer to the checklist item with the given code, or nil
// when no such item exists. Mutations through the returned pointer are
// intentional; handlers edit responses and remarks in place before saving.
func (a *Audit) Item(code string) *ChecklistItem {
	for i := range a.Checklist {
		if a.Checklist[i].Code == code {
			return &a.Checklist[i]
		}
	}
	return nil
}

// validateChecklist enforces code uniqueness and response validity across
// the checklist. Codes are compared case-sensitively; templates only emit
// upper-case codes but legacy data is passed through untouched.
func validateChecklist(items []ChecklistItem) error {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		code := strings.TrimSpace(it.Code)
		if code == "" {
			return &ValidationError{Field: "checklist", Reason: "item with empty code"}
		}
		if seen[code] {
			return &ValidationError{Field: "checklist", Reason: fmt.Sprintf("duplicate item code %q", code)}
		}
		seen[code] = true
		if !it.Response.Valid() {
			return &ValidationError{Field: "checklist", Reason: fmt.Sprintf("item %s has invalid response %q", code, it.Response)}
		}
	}
	return nil
}
