// Package models defines the database row models for the Eastern ERP
// backend. The compliance.Audit aggregate lives in internal/compliance; the
// audit repository maps it to its table directly.
package models

import "time"

// User represents an application account. PasswordHash is a bcrypt hash and
// never leaves the server; the json tag strips it from API responses.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Known roles. Role gates are coarse: admin manages users, every active
// account can work with audits and rugs.
const (
	RoleAdmin        = "admin"
	RoleAuditor      = "auditor"
	RoleMerchandiser = "merchandiser"
	RoleSampling     = "sampling"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleAuditor, RoleMerchandiser, RoleSampling:
		return true
	}
	return false
}
