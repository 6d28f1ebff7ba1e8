package domain

import "context"

// Role is a user's access-control role
type Role string

const (
	RoleRequester Role = "requester"
	RoleAdmin     Role = "admin"
)

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	return r == RoleRequester || r == RoleAdmin
}

// User is an identity record in the credential store. The core only reads
// users; provisioning happens through the seed and hashgen tools.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt; never returned in API responses
	Role         Role
	Disabled     bool
}

// UserRepository defines read access to the credential store.
type UserRepository interface {
	// GetByUsername returns the user or a "not found" error. Callers must not
	// reveal to clients whether the user exists.
	GetByUsername(ctx context.Context, username string) (*User, error)
}
