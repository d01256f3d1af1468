package domain

import (
	"context"
	"time"

	"github.com/asaskevich/govalidator"
)

// Key for storing user ID in request context
type contextKey string

const (
	UserIDKey contextKey = "user_id"
)

// WithUserID returns a context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// UserIDFromContext extracts the authenticated user's ID, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

// User represents an account that owns contacts, pipelines, deals and
// activities. The webhook core only ever reads users.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name,omitempty" db:"first_name"`
	LastName     string    `json:"last_name,omitempty" db:"last_name"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (i *RegisterInput) Validate() error {
	if i.Email == "" || !govalidator.IsEmail(i.Email) {
		return NewValidationError("a valid email is required")
	}
	if len(i.Password) < 8 {
		return NewValidationError("password must be at least 8 characters")
	}
	return nil
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthServiceInterface interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	VerifyToken(ctx context.Context, token string) (*User, error)
}

type UserRepository interface {
	// CreateUser creates a new user in the database
	CreateUser(ctx context.Context, user *User) error

	// GetUserByEmail retrieves a user by their email address
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByID retrieves a user by their ID
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetEarliestUser retrieves the earliest-created user, ordered by
	// creation time ascending with ID as tiebreaker
	GetEarliestUser(ctx context.Context) (*User, error)
}

// OwnerResolver decides which user owns the state produced by an inbound
// webhook delivery when the payload may or may not carry an explicit owner.
// It is an injected policy so multi-tenant deployments can replace the
// single-tenant "earliest user" fallback with strict validation.
type OwnerResolver interface {
	// ResolveOwner returns the owning user for a delivery. A nil user with a
	// nil error means no owner could be determined and the delivery should be
	// acknowledged without processing.
	ResolveOwner(ctx context.Context, payloadUserID string) (*User, error)
}

// ErrUserNotFound is returned when a user is not found
type ErrUserNotFound struct {
	Message string
}

func (e *ErrUserNotFound) Error() string {
	return e.Message
}

// ErrUserExists is returned when trying to create a user that already exists
type ErrUserExists struct {
	Message string
}

func (e *ErrUserExists) Error() string {
	return e.Message
}
