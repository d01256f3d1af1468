package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leadpipe/leadpipe/internal/domain"
)

func TestWebhookLogRepository_ClaimDelivery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewWebhookLogRepository(db)

	t.Run("first claim succeeds", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO webhook_logs").
			WillReturnResult(sqlmock.NewResult(0, 1))

		log := &domain.WebhookLog{
			DeliveryID: "evt-123",
			Endpoint:   "/api/webhooks/appointment",
			Payload:    `{"event":"appointment_booked"}`,
		}
		claimed, err := repo.ClaimDelivery(context.Background(), log)
		require.NoError(t, err)
		assert.True(t, claimed)
		assert.Equal(t, domain.WebhookLogStatusProcessing, log.Status)
		assert.NotEmpty(t, log.ID)
	})

	t.Run("duplicate delivery is not an error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO webhook_logs").
			WillReturnError(newUniqueViolation("webhook_logs_delivery_id_key"))

		log := &domain.WebhookLog{DeliveryID: "evt-123", Endpoint: "/api/webhooks/appointment"}
		claimed, err := repo.ClaimDelivery(context.Background(), log)
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("other database errors surface", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO webhook_logs").
			WillReturnError(errors.New("connection reset"))

		log := &domain.WebhookLog{DeliveryID: "evt-456", Endpoint: "/api/webhooks/appointment"}
		claimed, err := repo.ClaimDelivery(context.Background(), log)
		assert.Error(t, err)
		assert.False(t, claimed)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookLogRepository_FinalizeDelivery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewWebhookLogRepository(db)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("UPDATE webhook_logs").
			WithArgs(domain.WebhookLogStatusSuccess, 200, nil, sqlmock.AnyArg(), "evt-123").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.FinalizeDelivery(context.Background(), "evt-123", domain.WebhookLogStatusSuccess, 200, nil)
		assert.NoError(t, err)
	})

	t.Run("failed with error text", func(t *testing.T) {
		errText := "stage resolution exploded"
		mock.ExpectExec("UPDATE webhook_logs").
			WithArgs(domain.WebhookLogStatusFailed, 200, &errText, sqlmock.AnyArg(), "evt-123").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.FinalizeDelivery(context.Background(), "evt-123", domain.WebhookLogStatusFailed, 200, &errText)
		assert.NoError(t, err)
	})

	t.Run("unknown delivery", func(t *testing.T) {
		mock.ExpectExec("UPDATE webhook_logs").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.FinalizeDelivery(context.Background(), "ghost", domain.WebhookLogStatusSuccess, 200, nil)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookLogRepository_GetByDeliveryID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewWebhookLogRepository(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "delivery_id", "endpoint", "payload", "status", "http_status", "error", "created_at", "updated_at",
	}).AddRow("log-1", "evt-123", "/api/webhooks/appointment", `{}`, "success", 200, nil, now, now)

	mock.ExpectQuery("SELECT (.+) FROM webhook_logs WHERE delivery_id").
		WithArgs("evt-123").
		WillReturnRows(rows)

	log, err := repo.GetByDeliveryID(context.Background(), "evt-123")
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookLogStatusSuccess, log.Status)
	assert.Nil(t, log.Error)

	assert.NoError(t, mock.ExpectationsWereMet())
}
