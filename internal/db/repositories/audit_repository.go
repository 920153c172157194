// Package repositories implements the data access layer (repository pattern) for Eastern ERP.
// Each repository type encapsulates all database queries for a domain entity.
// Handlers never issue SQL directly; all database access goes through this layer, which makes query logic testable in isolation and prevents accidental cross-domain data access.
//
// audit_repository.go implements the compliance.Store persistence gateway
// over PostgreSQL. The checklist and score are stored as JSONB documents;
// every update replays the full checklist array so evidence references can
// never be lost to a partial write.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/eastern-erp/eastern-erp/internal/compliance"
)

// AuditRepository handles audit persistence. It satisfies compliance.Store.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

const auditColumns = `id, company, auditor_name, audit_date, location, audit_scope,
	template_key, template_version, checklist, score, status, created_by,
	created_at, updated_at, submitted_at`

// Create inserts a new audit row and returns its generated identifier.
func (r *AuditRepository) Create(ctx context.Context, a *compliance.Audit) (string, error) {
	id := uuid.New().String()

	checklistJSON, scoreJSON, err := marshalAudit(a)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO audits (id, company, auditor_name, audit_date, location, audit_scope,
			template_key, template_version, checklist, score, status, created_by,
			created_at, updated_at, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.db.ExecContext(ctx, query,
		id,
		a.Company,
		a.AuditorName,
		a.AuditDate,
		a.Location,
		a.AuditScope,
		a.TemplateKey,
		a.TemplateVersion,
		checklistJSON,
		scoreJSON,
		string(a.Status),
		a.CreatedBy,
		a.CreatedAt,
		a.UpdatedAt,
		a.SubmittedAt,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

// Update writes the audit back, full checklist included. The status
// predicate makes submitted audits immutable at the database layer: a
// stale client (or a direct API call) cannot mutate a submitted audit no
// matter what its local copy claims. The one exception is the submit write
// itself, which flips status and sets submitted_at in the same statement;
// it still matches the predicate because the stored row is a draft until
// this write lands.
func (r *AuditRepository) Update(ctx context.Context, a *compliance.Audit) error {
	checklistJSON, scoreJSON, err := marshalAudit(a)
	if err != nil {
		return err
	}

	query := `
		UPDATE audits
		SET company = $2, auditor_name = $3, audit_date = $4, location = $5,
			audit_scope = $6, template_key = $7, template_version = $8,
			checklist = $9, score = $10, status = $11, updated_at = $12,
			submitted_at = $13
		WHERE id = $1 AND status = 'draft'
	`

	result, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.Company,
		a.AuditorName,
		a.AuditDate,
		a.Location,
		a.AuditScope,
		a.TemplateKey,
		a.TemplateVersion,
		checklistJSON,
		scoreJSON,
		string(a.Status),
		a.UpdatedAt,
		a.SubmittedAt,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Zero rows: either the audit is gone or it is already submitted.
	var status string
	err = r.db.QueryRowContext(ctx, `SELECT status FROM audits WHERE id = $1`, a.ID).Scan(&status)
	if err == sql.ErrNoRows {
		return compliance.ErrNotFound
	}
	if err != nil {
		return err
	}
	if status == string(compliance.StatusSubmitted) {
		return compliance.ErrAuditSubmitted
	}
	return fmt.Errorf("update of audit %s affected no rows", a.ID)
}

// Get retrieves a single audit by id. Returns compliance.ErrNotFound when
// no row exists.
func (r *AuditRepository) Get(ctx context.Context, id string) (*compliance.Audit, error) {
	query := `SELECT ` + auditColumns + ` FROM audits WHERE id = $1`

	a, err := scanAudit(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, compliance.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List retrieves audits matching the filter, newest first.
func (r *AuditRepository) List(ctx context.Context, f compliance.ListFilter) ([]*compliance.Audit, error) {
	query := `SELECT ` + auditColumns + ` FROM audits WHERE 1=1`

	args := make([]interface{}, 0)
	paramIndex := 1

	if f.Company != nil {
		query += fmt.Sprintf(` AND company = $%d`, paramIndex)
		args = append(args, *f.Company)
		paramIndex++
	}
	if f.Status != nil {
		query += fmt.Sprintf(` AND status = $%d`, paramIndex)
		args = append(args, string(*f.Status))
		paramIndex++
	}
	if f.TemplateKey != nil {
		query += fmt.Sprintf(` AND template_key = $%d`, paramIndex)
		args = append(args, *f.TemplateKey)
		paramIndex++
	}
	if f.CreatedBy != nil {
		query += fmt.Sprintf(` AND created_by = $%d`, paramIndex)
		args = append(args, *f.CreatedBy)
		paramIndex++
	}

	query += ` ORDER BY updated_at DESC`

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, paramIndex, paramIndex+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	audits := make([]*compliance.Audit, 0)
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		audits = append(audits, a)
	}

	return audits, rows.Err()
}

// Delete removes an audit. Returns compliance.ErrNotFound when no row
// matched.
func (r *AuditRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM audits WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return compliance.ErrNotFound
	}
	return nil
}

// CountStaleDrafts counts drafts untouched since the cutoff. Used by the
// stale-draft notifier job.
func (r *AuditRepository) CountStaleDrafts(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audits WHERE status = 'draft' AND updated_at < $1`,
		cutoff,
	).Scan(&count)
	return count, err
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAudit(row rowScanner) (*compliance.Audit, error) {
	a := &compliance.Audit{}
	var checklistJSON, scoreJSON []byte
	var status string

	err := row.Scan(
		&a.ID,
		&a.Company,
		&a.AuditorName,
		&a.AuditDate,
		&a.Location,
		&a.AuditScope,
		&a.TemplateKey,
		&a.TemplateVersion,
		&checklistJSON,
		&scoreJSON,
		&status,
		&a.CreatedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Status = compliance.Status(status)
	if len(checklistJSON) > 0 {
		if err := json.Unmarshal(checklistJSON, &a.Checklist); err != nil {
			return nil, fmt.Errorf("failed to decode checklist for audit %s: %w", a.ID, err)
		}
	}
	if len(scoreJSON) > 0 {
		if err := json.Unmarshal(scoreJSON, &a.Score); err != nil {
			return nil, fmt.Errorf("failed to decode score for audit %s: %w", a.ID, err)
		}
	}

	return a, nil
}

func marshalAudit(a *compliance.Audit) (checklistJSON, scoreJSON []byte, err error) {
	checklist := a.Checklist
	if checklist == nil {
		checklist = []compliance.ChecklistItem{}
	}
	checklistJSON, err = json.Marshal(checklist)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode checklist: %w", err)
	}
	scoreJSON, err = json.Marshal(a.Score)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode score: %w", err)
	}
	return checklistJSON, scoreJSON, nil
}
