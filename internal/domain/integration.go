package domain

import (
	"context"
	"time"
)

// IntegrationProvider identifies a third-party credential set
type IntegrationProvider string

const (
	IntegrationTelephony IntegrationProvider = "telephony"
)

// Integration stores third-party credentials for a user. The API key is kept
// AES-GCM encrypted at rest and decrypted only at call time.
type Integration struct {
	ID              string              `json:"id" db:"id"`
	UserID          string              `json:"user_id" db:"user_id"`
	Provider        IntegrationProvider `json:"provider" db:"provider"`
	EncryptedAPIKey string              `json:"-" db:"encrypted_api_key"`
	BaseURL         string              `json:"base_url,omitempty" db:"base_url"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" db:"updated_at"`
}

type IntegrationRepository interface {
	// UpsertIntegration creates or replaces the credentials of a
	// (user, provider) pair
	UpsertIntegration(ctx context.Context, integration *Integration) error

	// GetIntegration retrieves the credentials of a (user, provider) pair
	GetIntegration(ctx context.Context, userID string, provider IntegrationProvider) (*Integration, error)
}

// ErrIntegrationNotFound is returned when no credentials are stored
type ErrIntegrationNotFound struct {
	Message string
}

func (e *ErrIntegrationNotFound) Error() string {
	return e.Message
}
