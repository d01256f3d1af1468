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

func dealRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "value", "currency", "stage_id", "pipeline_id", "contact_id", "user_id", "data", "created_at", "updated_at",
	})
}

func TestDealRepository_GetDealByTitle(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewDealRepository(db)
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM deals WHERE title").
			WithArgs("Deal with Jane", "pipe-1", "user-1").
			WillReturnRows(dealRows().
				AddRow("d-1", "Deal with Jane", 500.0, "USD", "stage-1", "pipe-1", "c-1", "user-1", []byte(`{"source":"webhook"}`), now, now))

		deal, err := repo.GetDealByTitle(context.Background(), "Deal with Jane", "pipe-1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, "d-1", deal.ID)
		assert.Equal(t, 500.0, deal.Value)
		assert.Equal(t, "webhook", deal.Data["source"])
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM deals WHERE title").
			WillReturnRows(dealRows())

		_, err := repo.GetDealByTitle(context.Background(), "Nope", "pipe-1", "user-1")
		var notFound *domain.ErrDealNotFound
		assert.ErrorAs(t, err, &notFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDealRepository_UpdateDeal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewDealRepository(db)

	t.Run("nil contact keeps stored link", func(t *testing.T) {
		mock.ExpectExec("UPDATE deals").
			WithArgs(750.0, "USD", "stage-2", nil, sqlmock.AnyArg(), sqlmock.AnyArg(), "d-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		deal := &domain.Deal{
			ID:       "d-1",
			Value:    750,
			Currency: "USD",
			StageID:  "stage-2",
			Data:     domain.JSONMap{"source": "webhook"},
		}
		assert.NoError(t, repo.UpdateDeal(context.Background(), deal))
	})

	t.Run("missing deal", func(t *testing.T) {
		mock.ExpectExec("UPDATE deals").
			WillReturnResult(sqlmock.NewResult(0, 0))

		deal := &domain.Deal{ID: "ghost"}
		err := repo.UpdateDeal(context.Background(), deal)
		var notFound *domain.ErrDealNotFound
		assert.ErrorAs(t, err, &notFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDealRepository_UpdateDealStage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewDealRepository(db)

	mock.ExpectExec("UPDATE deals").
		WithArgs("stage-3", sqlmock.AnyArg(), "d-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateDealStage(context.Background(), "d-1", "stage-3"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
