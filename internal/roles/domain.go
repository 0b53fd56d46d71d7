package roles

import "time"

// Role is a named permission grouping assignable to admin users.
type Role struct {
	ID             int64
	Name           string
	Description    string
	PermissionKeys []string
	UserCount      int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
