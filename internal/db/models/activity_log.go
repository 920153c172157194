// activity_log.go defines the ActivityLog model recording who did what:
// actor, action, affected resource, and client IP.
package models

import "time"

// ActivityLog represents one recorded user action.
type ActivityLog struct {
	ID           string    `json:"id" db:"id"`
	UserID       *string   `json:"user_id,omitempty" db:"user_id"` // nil for unauthenticated actions
	Action       string    `json:"action" db:"action"`             // "POST /api/v1/audits"
	ResourceType *string   `json:"resource_type,omitempty" db:"resource_type"`
	ResourceID   *string   `json:"resource_id,omitempty" db:"resource_id"`
	IPAddress    *string   `json:"ip_address,omitempty" db:"ip_address"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
