// Package models holds the server-side data model for adminboard.
package models

import (
	"database/sql"
	"time"
)

// Role is the privilege level of a dashboard admin.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Admin is a dashboard administrator. SessionToken holds the single token
// currently accepted for authentication; NULL means no live session.
type Admin struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	SessionToken sql.NullString
	CreatedAt    time.Time
}
