// rug_repository.go implements RugRepository, providing database queries for
// the merchandising rug catalogue.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/eastern-erp/eastern-erp/internal/db/models"
)

// RugRepository handles database operations for the rug catalogue
type RugRepository struct {
	db *sqlx.DB
}

// NewRugRepository creates a new rug repository
func NewRugRepository(db *sqlx.DB) *RugRepository {
	return &RugRepository{db: db}
}

// Create inserts a new rug
func (r *RugRepository) Create(ctx context.Context, rug *models.Rug) error {
	rug.ID = uuid.New().String()
	rug.CreatedAt = time.Now()
	rug.UpdatedAt = rug.CreatedAt
	if rug.Status == "" {
		rug.Status = models.RugStatusActive
	}

	query := `
		INSERT INTO rugs (
			id, design_name, construction, size, color, company, status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err := r.db.ExecContext(ctx, query,
		rug.ID, rug.DesignName, rug.Construction, rug.Size, rug.Color,
		rug.Company, rug.Status, rug.CreatedAt, rug.UpdatedAt,
	)
	return err
}

// Get retrieves a rug by ID. Returns nil, nil when no row exists.
func (r *RugRepository) Get(ctx context.Context, id string) (*models.Rug, error) {
	var rug models.Rug
	query := `SELECT * FROM rugs WHERE id = $1`
	err := r.db.GetContext(ctx, &rug, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rug, nil
}

// List lists rugs, optionally filtered by company and status.
func (r *RugRepository) List(ctx context.Context, company, status string, limit, offset int) ([]*models.Rug, error) {
	query := `SELECT * FROM rugs WHERE 1=1`
	args := make([]interface{}, 0)
	paramIndex := 1

	if company != "" {
		query += fmt.Sprintf(` AND company = $%d`, paramIndex)
		args = append(args, company)
		paramIndex++
	}
	if status != "" {
		query += fmt.Sprintf(` AND status = $%d`, paramIndex)
		args = append(args, status)
		paramIndex++
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, paramIndex, paramIndex+1)
	args = append(args, limit, offset)

	rugs := make([]*models.Rug, 0)
	err := r.db.SelectContext(ctx, &rugs, query, args...)
	return rugs, err
}

// Search searches rugs by design name or construction.
func (r *RugRepository) Search(ctx context.Context, term string, limit, offset int) ([]*models.Rug, error) {
	query := `
		SELECT * FROM rugs
		WHERE design_name ILIKE $1 OR construction ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rugs := make([]*models.Rug, 0)
	err := r.db.SelectContext(ctx, &rugs, query, "%"+term+"%", limit, offset)
	return rugs, err
}

// Update updates a rug's catalogue fields
func (r *RugRepository) Update(ctx context.Context, rug *models.Rug) error {
	query := `
		UPDATE rugs SET
			design_name = $2, construction = $3, size = $4, color = $5,
			company = $6, status = $7, updated_at = $8
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query,
		rug.ID, rug.DesignName, rug.Construction, rug.Size, rug.Color,
		rug.Company, rug.Status, time.Now(),
	)
	return err
}

// Delete removes a rug
func (r *RugRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM rugs WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
