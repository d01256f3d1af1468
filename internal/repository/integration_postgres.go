package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Leadpipe/leadpipe/internal/domain"
)

type integrationRepository struct {
	db *sql.DB
}

// NewIntegrationRepository creates a new PostgreSQL integration repository
func NewIntegrationRepository(db *sql.DB) domain.IntegrationRepository {
	return &integrationRepository{db: db}
}

// UpsertIntegration replaces the stored credentials of a (user, provider)
// pair. ON CONFLICT on the composite unique index keeps the upsert atomic.
func (r *integrationRepository) UpsertIntegration(ctx context.Context, integration *domain.Integration) error {
	if integration.ID == "" {
		integration.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	integration.CreatedAt = now
	integration.UpdatedAt = now

	query := `
		INSERT INTO integrations (id, user_id, provider, encrypted_api_key, base_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, provider) DO UPDATE
		SET encrypted_api_key = EXCLUDED.encrypted_api_key,
			base_url = EXCLUDED.base_url,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		integration.ID,
		integration.UserID,
		integration.Provider,
		integration.EncryptedAPIKey,
		integration.BaseURL,
		integration.CreatedAt,
		integration.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert integration: %w", err)
	}
	return nil
}

func (r *integrationRepository) GetIntegration(ctx context.Context, userID string, provider domain.IntegrationProvider) (*domain.Integration, error) {
	query := `
		SELECT id, user_id, provider, encrypted_api_key, base_url, created_at, updated_at
		FROM integrations
		WHERE user_id = $1 AND provider = $2
	`
	var i domain.Integration
	err := r.db.QueryRowContext(ctx, query, userID, provider).Scan(
		&i.ID,
		&i.UserID,
		&i.Provider,
		&i.EncryptedAPIKey,
		&i.BaseURL,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrIntegrationNotFound{Message: "integration not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}
	return &i, nil
}
