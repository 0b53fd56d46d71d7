package users

import "time"

// User represents an account as seen by the admin panel, including its
// RBAC-relevant fields.
type User struct {
	ID           int64
	Email        string
	Name         string
	RoleTag      string
	RoleID       *int64
	RoleName     string
	OverrideKeys []string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
