package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leadpipe/leadpipe/internal/domain"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name", "role", "created_at", "updated_at",
	})
}

func TestUserRepository_GetEarliestUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewUserRepository(db)
	now := time.Now().UTC()

	t.Run("returns the oldest user", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users (.+) ORDER BY created_at ASC").
			WillReturnRows(userRows().
				AddRow("user-1", "owner@acme.io", "hash", "Alex", "Owner", "admin", now, now))

		user, err := repo.GetEarliestUser(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
	})

	t.Run("empty table", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users").
			WillReturnRows(userRows())

		_, err := repo.GetEarliestUser(context.Background())
		var notFound *domain.ErrUserNotFound
		assert.ErrorAs(t, err, &notFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewUserRepository(db)

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(newUniqueViolation("users_email_key"))

		user := &domain.User{Email: "owner@acme.io", PasswordHash: "hash"}
		err := repo.CreateUser(context.Background(), user)
		var exists *domain.ErrUserExists
		assert.ErrorAs(t, err, &exists)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
