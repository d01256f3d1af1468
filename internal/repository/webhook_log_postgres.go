package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Leadpipe/leadpipe/internal/domain"
)

type webhookLogRepository struct {
	db *sql.DB
}

// NewWebhookLogRepository creates a new PostgreSQL webhook log repository
func NewWebhookLogRepository(db *sql.DB) domain.WebhookLogRepository {
	return &webhookLogRepository{db: db}
}

const webhookLogColumns = `id, delivery_id, endpoint, payload, status, http_status, error, created_at, updated_at`

func scanWebhookLog(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.WebhookLog, error) {
	var l domain.WebhookLog
	var errText sql.NullString
	err := scanner.Scan(
		&l.ID,
		&l.DeliveryID,
		&l.Endpoint,
		&l.Payload,
		&l.Status,
		&l.HTTPStatus,
		&errText,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if errText.Valid {
		l.Error = &errText.String
	}
	return &l, nil
}

// ClaimDelivery inserts the log row with status processing. The unique
// constraint on delivery_id makes the insert itself the dedup check: a unique
// violation means another request already claimed this delivery, and the
// method reports that with (false, nil).
func (r *webhookLogRepository) ClaimDelivery(ctx context.Context, log *domain.WebhookLog) (bool, error) {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now
	if log.Status == "" {
		log.Status = domain.WebhookLogStatusProcessing
	}

	query := `
		INSERT INTO webhook_logs (id, delivery_id, endpoint, payload, status, http_status, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.DeliveryID,
		log.Endpoint,
		log.Payload,
		log.Status,
		log.HTTPStatus,
		log.Error,
		log.CreatedAt,
		log.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to claim webhook delivery: %w", err)
	}
	return true, nil
}

func (r *webhookLogRepository) FinalizeDelivery(ctx context.Context, deliveryID string, status domain.WebhookLogStatus, httpStatus int, errText *string) error {
	query := `
		UPDATE webhook_logs
		SET status = $1, http_status = $2, error = $3, updated_at = $4
		WHERE delivery_id = $5
	`
	result, err := r.db.ExecContext(ctx, query, status, httpStatus, errText, time.Now().UTC(), deliveryID)
	if err != nil {
		return fmt.Errorf("failed to finalize webhook delivery: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no webhook log for delivery %s", deliveryID)
	}
	return nil
}

func (r *webhookLogRepository) GetByDeliveryID(ctx context.Context, deliveryID string) (*domain.WebhookLog, error) {
	query := `
		SELECT ` + webhookLogColumns + `
		FROM webhook_logs
		WHERE delivery_id = $1
	`
	log, err := scanWebhookLog(r.db.QueryRowContext(ctx, query, deliveryID))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "webhook_log", ID: deliveryID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook log: %w", err)
	}
	return log, nil
}

func (r *webhookLogRepository) ListWebhookLogs(ctx context.Context, endpoint string, limit, offset int) ([]*domain.WebhookLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + webhookLogColumns + `
		FROM webhook_logs
		WHERE endpoint = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, endpoint, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.WebhookLog
	for rows.Next() {
		log, err := scanWebhookLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating webhook logs rows: %w", err)
	}
	return logs, nil
}
