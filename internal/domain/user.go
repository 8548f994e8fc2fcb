package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateEmail is returned when a user with the same email already exists.
var ErrDuplicateEmail = errors.New("email already in use")

// Role is the application role carried by an authenticated identity.
type Role string

const (
	RoleAttendee Role = "attendee"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAttendee, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// User represents a platform user. Users are managed by the identity provider;
// this service only reads them.
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(name, email string, role Role, createdAt time.Time) *User {
	return &User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: createdAt,
	}
}

// UserSummary is the public subset of a user embedded in ticket views.
// swagger:model UserSummary
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Identity is the authenticated caller of an operation: an opaque user id and its role.
type Identity struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the identity has the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// CanValidate reports whether the identity may scan tickets at the door.
func (i Identity) CanValidate() bool { return i.Role == RoleStaff || i.Role == RoleAdmin }

// TokenIssuer issues tokens (e.g. JWT) for a user.
type TokenIssuer interface {
	Issue(userID string, role Role, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated identity.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
