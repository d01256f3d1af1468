package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/Leadpipe/leadpipe/internal/domain"
)

type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new PostgreSQL contact repository
func NewContactRepository(db *sql.DB) domain.ContactRepository {
	return &contactRepository{db: db}
}

const contactColumns = `id, email, first_name, last_name, phone, company, user_id, created_at, updated_at`

func scanContact(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Contact, error) {
	var c domain.Contact
	var firstName, lastName, phone, company sql.NullString
	err := scanner.Scan(
		&c.ID,
		&c.Email,
		&firstName,
		&lastName,
		&phone,
		&company,
		&c.UserID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if firstName.Valid {
		c.FirstName = &firstName.String
	}
	if lastName.Valid {
		c.LastName = &lastName.String
	}
	if phone.Valid {
		c.Phone = &phone.String
	}
	if company.Valid {
		c.Company = &company.String
	}
	return &c, nil
}

func (r *contactRepository) CreateContact(ctx context.Context, contact *domain.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	query := `
		INSERT INTO contacts (id, email, first_name, last_name, phone, company, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		contact.ID,
		contact.Email,
		contact.FirstName,
		contact.LastName,
		contact.Phone,
		contact.Company,
		contact.UserID,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ErrContactEmailExists{Email: contact.Email}
		}
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func (r *contactRepository) GetContactByEmail(ctx context.Context, email string) (*domain.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE email = $1
	`
	contact, err := scanContact(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrContactNotFound{Message: "contact not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

func (r *contactRepository) GetContactByID(ctx context.Context, id string) (*domain.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE id = $1
	`
	contact, err := scanContact(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrContactNotFound{Message: "contact not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

// UpdateContact updates the mutable contact fields. COALESCE keeps the stored
// column whenever the incoming value is nil, so partial webhook payloads
// never erase known data.
func (r *contactRepository) UpdateContact(ctx context.Context, contact *domain.Contact) error {
	contact.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE contacts
		SET first_name = COALESCE($1, first_name),
			last_name = COALESCE($2, last_name),
			phone = COALESCE($3, phone),
			company = COALESCE($4, company),
			user_id = $5,
			updated_at = $6
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		contact.FirstName,
		contact.LastName,
		contact.Phone,
		contact.Company,
		contact.UserID,
		contact.UpdatedAt,
		contact.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrContactNotFound{Message: "contact not found"}
	}
	return nil
}

func (r *contactRepository) ListContacts(ctx context.Context, params domain.ContactListParams) ([]*domain.Contact, int, error) {
	builder := sq.Select(contactColumns).
		From("contacts").
		PlaceholderFormat(sq.Dollar).
		OrderBy("created_at DESC").
		Limit(uint64(params.Limit)).
		Offset(uint64(params.Offset))

	countBuilder := sq.Select("COUNT(*)").
		From("contacts").
		PlaceholderFormat(sq.Dollar)

	if params.UserID != "" {
		builder = builder.Where(sq.Eq{"user_id": params.UserID})
		countBuilder = countBuilder.Where(sq.Eq{"user_id": params.UserID})
	}
	if params.Email != "" {
		builder = builder.Where(sq.Eq{"email": params.Email})
		countBuilder = countBuilder.Where(sq.Eq{"email": params.Email})
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		cond := sq.Or{
			sq.ILike{"email": like},
			sq.ILike{"first_name": like},
			sq.ILike{"last_name": like},
			sq.ILike{"company": like},
		}
		builder = builder.Where(cond)
		countBuilder = countBuilder.Where(cond)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build contacts query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating contacts rows: %w", err)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build contacts count query: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	return contacts, total, nil
}

func (r *contactRepository) DeleteContact(ctx context.Context, id string) error {
	query := `DELETE FROM contacts WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrContactNotFound{Message: "contact not found"}
	}
	return nil
}
