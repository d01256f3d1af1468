package service

import (
	"context"
	"fmt"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/logger"
	"github.com/Leadpipe/leadpipe/pkg/telephony"
)

// TelephonyClientFactory builds a provider client from per-user credentials.
// Injected so tests can substitute a fake provider.
type TelephonyClientFactory func(baseURL, apiKey string) TelephonyClient

// TelephonyClient is the subset of the provider client the service uses.
type TelephonyClient interface {
	PlaceCall(ctx context.Context, req *telephony.CallRequest) (*telephony.ProviderResponse, error)
	SendSMS(ctx context.Context, req *telephony.SMSRequest) (*telephony.ProviderResponse, error)
}

// TelephonyService places calls and sends texts through the connected
// provider, logging each attempt in the activity trail.
type TelephonyService struct {
	integrations *IntegrationService
	activityRepo domain.ActivityRepository
	factory      TelephonyClientFactory
	logger       logger.Logger
}

func NewTelephonyService(integrations *IntegrationService, activityRepo domain.ActivityRepository, factory TelephonyClientFactory, logger logger.Logger) *TelephonyService {
	if factory == nil {
		factory = func(baseURL, apiKey string) TelephonyClient {
			return telephony.NewClient(baseURL, apiKey)
		}
	}
	return &TelephonyService{
		integrations: integrations,
		activityRepo: activityRepo,
		factory:      factory,
		logger:       logger,
	}
}

func (s *TelephonyService) client(ctx context.Context, userID string) (TelephonyClient, error) {
	apiKey, baseURL, err := s.integrations.Credentials(ctx, userID, domain.IntegrationTelephony)
	if err != nil {
		return nil, err
	}
	return s.factory(baseURL, apiKey), nil
}

func (s *TelephonyService) PlaceCall(ctx context.Context, userID, to, script string, contactID *string) (*telephony.ProviderResponse, error) {
	if to == "" {
		return nil, domain.NewValidationError("to is required")
	}
	client, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp, err := client.PlaceCall(ctx, &telephony.CallRequest{To: to, Script: script})
	if err != nil {
		return nil, fmt.Errorf("failed to place call: %w", err)
	}

	activity := &domain.Activity{
		Type:      domain.ActivityCallPlaced,
		Note:      "Call placed to " + to,
		ContactID: contactID,
		UserID:    userID,
		Data:      domain.JSONMap{"provider_id": resp.ID, "provider_status": resp.Status},
	}
	if err := s.activityRepo.CreateActivity(ctx, activity); err != nil {
		s.logger.WithField("user_id", userID).Error("failed to record placed call")
	}
	return resp, nil
}

func (s *TelephonyService) SendSMS(ctx context.Context, userID, to, body string, contactID *string) (*telephony.ProviderResponse, error) {
	if to == "" || body == "" {
		return nil, domain.NewValidationError("to and body are required")
	}
	client, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp, err := client.SendSMS(ctx, &telephony.SMSRequest{To: to, Body: body})
	if err != nil {
		return nil, fmt.Errorf("failed to send sms: %w", err)
	}

	activity := &domain.Activity{
		Type:      domain.ActivitySMSSent,
		Note:      "SMS sent to " + to,
		ContactID: contactID,
		UserID:    userID,
		Data:      domain.JSONMap{"provider_id": resp.ID, "provider_status": resp.Status},
	}
	if err := s.activityRepo.CreateActivity(ctx, activity); err != nil {
		s.logger.WithField("user_id", userID).Error("failed to record sent sms")
	}
	return resp, nil
}
