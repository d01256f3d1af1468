package domain

import (
	"context"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

// Contact represents a person in the CRM. Email is unique across the whole
// system, not per user - a documented limitation of the upstream data model.
type Contact struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FirstName *string   `json:"first_name,omitempty" db:"first_name"`
	LastName  *string   `json:"last_name,omitempty" db:"last_name"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Company   *string   `json:"company,omitempty" db:"company"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate ensures the contact has all required fields. Used by the CRUD
// surface; the webhook resolver intentionally applies a weaker check.
func (c *Contact) Validate() error {
	if c.Email == "" {
		return NewValidationError("email is required")
	}
	if !govalidator.IsEmail(c.Email) {
		return NewValidationError("invalid email format")
	}
	if c.UserID == "" {
		return NewValidationError("user_id is required")
	}
	return nil
}

// HasUsableEmail is the tolerant check applied to webhook payloads: presence
// plus a "contains @" test, nothing RFC-grade.
func HasUsableEmail(email string) bool {
	return email != "" && strings.Contains(email, "@")
}

// SplitName normalizes a free-text name into first/last parts by splitting on
// whitespace. Single-token names yield a nil last name.
func SplitName(name string) (first *string, last *string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return nil, nil
	}
	f := parts[0]
	first = &f
	if len(parts) > 1 {
		l := strings.Join(parts[1:], " ")
		last = &l
	}
	return first, last
}

// ContactListParams filters the contacts.list endpoint
type ContactListParams struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

func (p *ContactListParams) Validate() error {
	if p.Limit < 0 || p.Offset < 0 {
		return NewValidationError("limit and offset cannot be negative")
	}
	if p.Limit == 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return nil
}

type ContactServiceInterface interface {
	CreateContact(ctx context.Context, contact *Contact) error
	GetContactByID(ctx context.Context, id string) (*Contact, error)
	ListContacts(ctx context.Context, params ContactListParams) ([]*Contact, int, error)
	UpdateContact(ctx context.Context, contact *Contact) error
	DeleteContact(ctx context.Context, id string) error
}

type ContactRepository interface {
	// CreateContact inserts a contact. A duplicate email surfaces as
	// ErrContactEmailExists so callers can retry as an update.
	CreateContact(ctx context.Context, contact *Contact) error

	// GetContactByEmail retrieves a contact by email (global uniqueness)
	GetContactByEmail(ctx context.Context, email string) (*Contact, error)

	// GetContactByID retrieves a contact by ID
	GetContactByID(ctx context.Context, id string) (*Contact, error)

	// UpdateContact updates mutable fields. Nil incoming values never erase
	// stored values; the update keeps the existing column via COALESCE.
	UpdateContact(ctx context.Context, contact *Contact) error

	// ListContacts returns a filtered page of contacts plus the total count
	ListContacts(ctx context.Context, params ContactListParams) ([]*Contact, int, error)

	// DeleteContact removes a contact by ID
	DeleteContact(ctx context.Context, id string) error
}

// ErrContactNotFound is returned when a contact is not found
type ErrContactNotFound struct {
	Message string
}

func (e *ErrContactNotFound) Error() string {
	return e.Message
}

// ErrContactEmailExists is returned when an insert collides with the unique
// email constraint, typically under concurrent webhook deliveries.
type ErrContactEmailExists struct {
	Email string
}

func (e *ErrContactEmailExists) Error() string {
	return "contact already exists with email: " + e.Email
}
