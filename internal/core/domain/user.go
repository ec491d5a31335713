package domain

import "fmt"

// Role is the closed set of operator roles. Roles are parsed once at
// authentication time; nothing downstream switches on free-form strings.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleClient  Role = "CLIENT"
)

// ParseRole maps a stored role value onto the closed Role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleClient:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// CanManageUsers reports whether the role may approve, disable or edit users.
func (r Role) CanManageUsers() bool {
	return r == RoleAdmin || r == RoleManager
}

// CanViewAllAccounts reports whether the role may read accounts it does not own.
func (r Role) CanViewAllAccounts() bool {
	return r == RoleAdmin || r == RoleManager
}

// UserStatus is the lifecycle state of a user record. Registration creates
// PENDING users; a manager approval activates them.
type UserStatus string

const (
	UserPending  UserStatus = "PENDING"
	UserActive   UserStatus = "ACTIVE"
	UserDisabled UserStatus = "DISABLED"
)

// User represents a system user (operator or account holder).
type User struct {
	UserID       string     `json:"userID"` // Primary key (UUID)
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // bcrypt hash, never serialized
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Mobile       string     `json:"mobile"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	AuditFields
}
