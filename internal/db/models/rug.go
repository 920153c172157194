// rug.go defines the Rug model for the merchandising catalogue. Rugs carry
// a soft active/inactive status, separate from the audit lifecycle.
package models

import "time"

// Rug represents one catalogue entry: a design in a given construction,
// size, and colorway, owned by one of the manufacturing entities.
type Rug struct {
	ID           string    `json:"id" db:"id"`
	DesignName   string    `json:"design_name" db:"design_name"`
	Construction string    `json:"construction" db:"construction"`
	Size         string    `json:"size" db:"size"`
	Color        string    `json:"color" db:"color"`
	Company      string    `json:"company" db:"company"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Rug statuses.
const (
	RugStatusActive   = "active"
	RugStatusInactive = "inactive"
)
