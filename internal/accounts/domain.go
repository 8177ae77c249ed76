// Package accounts implements the credential validation pipeline: input
// normalization, signup and login checks, password hashing, and the
// role-aware welcome messages.
package accounts

import "time"

// Role classifies an account. Values are stored canonically upper-cased;
// input is matched case-insensitively at the boundary.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleUser   Role = "USER"
	RoleViewer Role = "VIEWER"
)

// DefaultRole is assigned when the store receives no role at creation.
const DefaultRole = RoleViewer

// ParseRole maps a normalized role string to its canonical value.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleUser, RoleViewer:
		return Role(s), true
	}
	return "", false
}

// User is the persisted account record. Password is held only as a bcrypt
// hash; the raw secret never survives the signup call.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credentials is one transient login attempt. It lives for the duration of
// a single validation call and is never persisted.
type Credentials struct {
	Email    string
	Password string
	Role     string
}

// NewUserFields carries the attributes the store needs to create an account.
type NewUserFields struct {
	Email        string
	Name         string
	PasswordHash string
	Role         Role
}
