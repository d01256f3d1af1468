package service

import (
	"context"
	"fmt"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/crypto"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

// IntegrationService stores third-party credentials encrypted at rest and
// hands them out decrypted only to outbound callers.
type IntegrationService struct {
	repo      domain.IntegrationRepository
	logger    logger.Logger
	secretKey string
}

func NewIntegrationService(repo domain.IntegrationRepository, logger logger.Logger, secretKey string) *IntegrationService {
	return &IntegrationService{repo: repo, logger: logger, secretKey: secretKey}
}

// Connect stores (or replaces) the credentials of a provider for a user.
func (s *IntegrationService) Connect(ctx context.Context, userID string, provider domain.IntegrationProvider, apiKey, baseURL string) error {
	if apiKey == "" {
		return domain.NewValidationError("api_key is required")
	}

	encrypted, err := crypto.EncryptString(apiKey, s.secretKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt api key: %w", err)
	}

	integration := &domain.Integration{
		UserID:          userID,
		Provider:        provider,
		EncryptedAPIKey: encrypted,
		BaseURL:         baseURL,
	}
	if err := s.repo.UpsertIntegration(ctx, integration); err != nil {
		return err
	}
	s.logger.WithFields(map[string]interface{}{
		"user_id":  userID,
		"provider": string(provider),
	}).Info("integration connected")
	return nil
}

// Credentials returns the decrypted API key and base URL for a provider.
func (s *IntegrationService) Credentials(ctx context.Context, userID string, provider domain.IntegrationProvider) (apiKey, baseURL string, err error) {
	integration, err := s.repo.GetIntegration(ctx, userID, provider)
	if err != nil {
		return "", "", err
	}
	apiKey, err = crypto.DecryptFromHexString(integration.EncryptedAPIKey, s.secretKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to decrypt api key: %w", err)
	}
	return apiKey, integration.BaseURL, nil
}
