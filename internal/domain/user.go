package domain

import "time"

// Role scopes what an authenticated subject may do.
type Role string

const (
	RoleUser          Role = "user"
	RoleAdministrator Role = "admin"
)

// ParseRole maps a raw claim value to a known role.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleUser, RoleAdministrator:
		return Role(raw), true
	}
	return "", false
}

// User is the domain model for registered accounts.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	IsActive     bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Personal holds profile data kept apart from credentials.
type Personal struct {
	UserID    int64
	Phone     string
	Email     string
	CreatedAt time.Time
}
