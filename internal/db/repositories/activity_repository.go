// activity_repository.go implements ActivityRepository, the append-mostly
// store behind the activity log middleware.
package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/eastern-erp/eastern-erp/internal/db/models"
)

// ActivityRepository handles activity log database operations
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Record appends one activity log entry.
func (r *ActivityRepository) Record(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now()

	query := `
		INSERT INTO activity_logs (id, user_id, action, resource_type, resource_id, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Action, entry.ResourceType,
		entry.ResourceID, entry.IPAddress, entry.CreatedAt,
	)
	return err
}

// List retrieves recent activity, newest first, optionally for one user.
func (r *ActivityRepository) List(ctx context.Context, userID string, limit, offset int) ([]*models.ActivityLog, error) {
	entries := make([]*models.ActivityLog, 0)

	if userID != "" {
		query := `
			SELECT * FROM activity_logs
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`
		err := r.db.SelectContext(ctx, &entries, query, userID, limit, offset)
		return entries, err
	}

	query := `
		SELECT * FROM activity_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	err := r.db.SelectContext(ctx, &entries, query, limit, offset)
	return entries, err
}

// PruneOlderThan deletes activity entries older than the cutoff. Returns the
// number of rows removed.
func (r *ActivityRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM activity_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
