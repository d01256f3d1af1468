package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

// WorkflowTrigger fires the automation engine for an event. Implementations
// are best effort: the webhook response never depends on them.
type WorkflowTrigger interface {
	Trigger(ctx context.Context, userID, eventName string, deal *domain.Deal, contact *domain.Contact, stageName string)
}

// WebhookService is the ingestion core: it turns one inbound delivery into an
// idempotent reconciliation of CRM state. Once a delivery passes the shape
// check it is always answered 200; internal failures are recorded in the
// delivery log and reported in the envelope body, never as a retryable status.
type WebhookService struct {
	logRepo       domain.WebhookLogRepository
	ownerResolver domain.OwnerResolver
	resolver      *EntityResolver
	dealRepo      domain.DealRepository
	pipelineRepo  domain.PipelineRepository
	activityRepo  domain.ActivityRepository
	workflows     WorkflowTrigger
	logger        logger.Logger
}

func NewWebhookService(
	logRepo domain.WebhookLogRepository,
	ownerResolver domain.OwnerResolver,
	resolver *EntityResolver,
	dealRepo domain.DealRepository,
	pipelineRepo domain.PipelineRepository,
	activityRepo domain.ActivityRepository,
	workflows WorkflowTrigger,
	logger logger.Logger,
) *WebhookService {
	return &WebhookService{
		logRepo:       logRepo,
		ownerResolver: ownerResolver,
		resolver:      resolver,
		dealRepo:      dealRepo,
		pipelineRepo:  pipelineRepo,
		activityRepo:  activityRepo,
		workflows:     workflows,
		logger:        logger,
	}
}

// canonicalEvent maps sender spellings onto the two events the dispatcher
// understands. Unknown events come back unchanged.
func canonicalEvent(event string) string {
	switch event {
	case domain.EventAppointmentBooked, domain.EventCallBooked:
		return domain.EventAppointmentBooked
	case domain.EventDealStatusChanged, domain.EventStatusChanged:
		return domain.EventDealStatusChanged
	default:
		return event
	}
}

// ProcessDelivery runs the full ingestion flow for one delivery and returns
// the HTTP status plus the response envelope.
func (s *WebhookService) ProcessDelivery(ctx context.Context, endpoint string, raw []byte) (int, *domain.WebhookResponse) {
	payload := domain.ParseInboundPayload(raw)
	if payload.Event == "" {
		return http.StatusBadRequest, &domain.WebhookResponse{
			Status:  "error",
			Message: "missing event type",
		}
	}
	event := canonicalEvent(payload.Event)

	user, err := s.ownerResolver.ResolveOwner(ctx, payload.UserID)
	if err != nil {
		s.logger.WithField("error", err.Error()).Error("owner resolution failed")
		return http.StatusInternalServerError, &domain.WebhookResponse{
			Status:  "error",
			Message: "failed to resolve owning user",
		}
	}
	if user == nil {
		// Nothing to attach the data to. Acknowledge so the sender does not
		// retry forever against an empty system.
		return http.StatusOK, &domain.WebhookResponse{
			Status:  "success",
			Message: "no user available, delivery acknowledged without processing",
		}
	}

	deliveryID := domain.ComputeDeliveryID(payload.EventID, raw)
	claimed, err := s.logRepo.ClaimDelivery(ctx, &domain.WebhookLog{
		DeliveryID: deliveryID,
		Endpoint:   endpoint,
		Payload:    string(raw),
	})
	if err != nil {
		s.logger.WithField("error", err.Error()).Error("failed to claim webhook delivery")
		return http.StatusInternalServerError, &domain.WebhookResponse{
			Status:  "error",
			Message: "failed to record delivery",
		}
	}
	if !claimed {
		return http.StatusOK, &domain.WebhookResponse{
			Status:  "success",
			Message: "duplicate delivery ignored",
			EventID: deliveryID,
		}
	}

	var (
		deal      *domain.Deal
		contact   *domain.Contact
		stageName string
		procErr   error
	)
	switch event {
	case domain.EventAppointmentBooked:
		deal, contact, stageName, procErr = s.handleAppointmentBooked(ctx, user, payload)
	case domain.EventDealStatusChanged:
		deal, contact, stageName, procErr = s.handleDealStatusChanged(ctx, user, payload)
	default:
		s.finalize(ctx, deliveryID, domain.WebhookLogStatusSuccess, nil)
		return http.StatusOK, &domain.WebhookResponse{
			Status:  "success",
			Message: fmt.Sprintf("event %s ignored", payload.Event),
			EventID: deliveryID,
		}
	}

	if procErr != nil {
		s.logger.WithFields(map[string]interface{}{
			"delivery_id": deliveryID,
			"event":       event,
			"error":       procErr.Error(),
		}).Error("webhook processing failed")
		errText := procErr.Error()
		s.finalize(ctx, deliveryID, domain.WebhookLogStatusFailed, &errText)
		return http.StatusOK, &domain.WebhookResponse{
			Status:  "error",
			Message: "processing failed, delivery recorded",
			EventID: deliveryID,
		}
	}

	s.finalize(ctx, deliveryID, domain.WebhookLogStatusSuccess, nil)

	if s.workflows != nil && deal != nil {
		s.workflows.Trigger(ctx, user.ID, event, deal, contact, stageName)
	}

	return http.StatusOK, &domain.WebhookResponse{
		Status:  "success",
		Message: "delivery processed",
		EventID: deliveryID,
	}
}

func (s *WebhookService) finalize(ctx context.Context, deliveryID string, status domain.WebhookLogStatus, errText *string) {
	if err := s.logRepo.FinalizeDelivery(ctx, deliveryID, status, http.StatusOK, errText); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"delivery_id": deliveryID,
			"error":       err.Error(),
		}).Error("failed to finalize webhook delivery")
	}
}

// handleAppointmentBooked reconciles a booking event: contact merge, default
// pipeline, deal upsert by the title heuristic, booking activity.
func (s *WebhookService) handleAppointmentBooked(ctx context.Context, user *domain.User, payload *domain.InboundPayload) (*domain.Deal, *domain.Contact, string, error) {
	contact, err := s.resolver.ResolveContact(ctx, payload, user.ID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("contact resolution: %w", err)
	}

	pipeline, err := s.resolver.ResolveDefaultPipeline(ctx, user.ID)
	if err != nil {
		return nil, contact, "", fmt.Errorf("pipeline resolution: %w", err)
	}
	stage := s.resolver.ResolveStage(pipeline, payload.NewStatus, payload.DealStageID)
	if stage == nil {
		return nil, contact, "", fmt.Errorf("pipeline %s has no stages", pipeline.ID)
	}

	title := payload.DealTitle
	if title == "" {
		title = "Deal with " + contactLabel(contact, payload)
	}

	deal, err := s.upsertDeal(ctx, user, payload, pipeline, stage, contact, title)
	if err != nil {
		return nil, contact, "", err
	}

	activity := &domain.Activity{
		Type:   domain.ActivityAppointmentBooked,
		Note:   "Appointment booked: " + title,
		DealID: &deal.ID,
		UserID: user.ID,
		Data:   payload.BookingDetails,
	}
	if contact != nil {
		activity.ContactID = &contact.ID
	}
	if err := s.activityRepo.CreateActivity(ctx, activity); err != nil {
		return nil, contact, "", fmt.Errorf("activity log: %w", err)
	}
	return deal, contact, stage.Name, nil
}

// handleDealStatusChanged moves an existing deal to the stage named by the
// payload. The deal is located by explicit ID first, then by the title
// heuristic inside the user's default pipeline.
func (s *WebhookService) handleDealStatusChanged(ctx context.Context, user *domain.User, payload *domain.InboundPayload) (*domain.Deal, *domain.Contact, string, error) {
	contact, err := s.resolver.ResolveContact(ctx, payload, user.ID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("contact resolution: %w", err)
	}

	var deal *domain.Deal
	if payload.DealID != "" {
		deal, err = s.dealRepo.GetDealByID(ctx, payload.DealID)
	} else if payload.DealTitle != "" {
		var pipeline *domain.Pipeline
		pipeline, err = s.resolver.ResolveDefaultPipeline(ctx, user.ID)
		if err == nil {
			deal, err = s.dealRepo.GetDealByTitle(ctx, payload.DealTitle, pipeline.ID, user.ID)
		}
	} else {
		return nil, contact, "", fmt.Errorf("status change carries neither deal id nor title")
	}
	if err != nil {
		return nil, contact, "", fmt.Errorf("deal lookup: %w", err)
	}

	pipeline, err := s.pipelineRepo.GetPipelineByID(ctx, deal.PipelineID)
	if err != nil {
		return nil, contact, "", fmt.Errorf("pipeline lookup: %w", err)
	}
	stage := s.resolver.ResolveStage(pipeline, payload.NewStatus, payload.DealStageID)
	if stage == nil {
		return nil, contact, "", fmt.Errorf("pipeline %s has no stages", pipeline.ID)
	}

	if stage.ID != deal.StageID {
		if err := s.dealRepo.UpdateDealStage(ctx, deal.ID, stage.ID); err != nil {
			return nil, contact, "", fmt.Errorf("stage move: %w", err)
		}
		deal.StageID = stage.ID
	}

	activity := &domain.Activity{
		Type:   domain.ActivityDealStatusChanged,
		Note:   fmt.Sprintf("Deal %q moved to %s", deal.Title, stage.Name),
		DealID: &deal.ID,
		UserID: user.ID,
	}
	if contact != nil {
		activity.ContactID = &contact.ID
	} else if deal.ContactID != nil {
		activity.ContactID = deal.ContactID
	}
	if err := s.activityRepo.CreateActivity(ctx, activity); err != nil {
		return nil, contact, "", fmt.Errorf("activity log: %w", err)
	}
	return deal, contact, stage.Name, nil
}

// upsertDeal locates a deal by explicit ID or by (title, pipeline, user) and
// updates it, creating it when nothing matches.
func (s *WebhookService) upsertDeal(ctx context.Context, user *domain.User, payload *domain.InboundPayload, pipeline *domain.Pipeline, stage *domain.PipelineStage, contact *domain.Contact, title string) (*domain.Deal, error) {
	var contactID *string
	if contact != nil {
		contactID = &contact.ID
	}

	var existing *domain.Deal
	var err error
	if payload.DealID != "" {
		existing, err = s.dealRepo.GetDealByID(ctx, payload.DealID)
	} else {
		existing, err = s.dealRepo.GetDealByTitle(ctx, title, pipeline.ID, user.ID)
	}
	if err == nil {
		if payload.DealValue > 0 {
			existing.Value = payload.DealValue
		}
		if payload.DealCurrency != "" {
			existing.Currency = payload.DealCurrency
		}
		existing.StageID = stage.ID
		existing.ContactID = contactID
		if err := s.dealRepo.UpdateDeal(ctx, existing); err != nil {
			return nil, fmt.Errorf("deal update: %w", err)
		}
		return existing, nil
	}
	if !isDealNotFound(err) {
		return nil, fmt.Errorf("deal lookup: %w", err)
	}

	currency := payload.DealCurrency
	if currency == "" {
		currency = "USD"
	}
	deal := &domain.Deal{
		Title:      title,
		Value:      payload.DealValue,
		Currency:   currency,
		StageID:    stage.ID,
		PipelineID: pipeline.ID,
		ContactID:  contactID,
		UserID:     user.ID,
		Data:       domain.JSONMap{domain.DealSourceKey: "webhook"},
	}
	for k, v := range payload.BookingDetails {
		deal.Data[k] = v
	}
	if err := s.dealRepo.CreateDeal(ctx, deal); err != nil {
		return nil, fmt.Errorf("deal create: %w", err)
	}
	return deal, nil
}

func isDealNotFound(err error) bool {
	var notFound *domain.ErrDealNotFound
	return errors.As(err, &notFound)
}

func contactLabel(contact *domain.Contact, payload *domain.InboundPayload) string {
	if payload.ContactName != "" {
		return payload.ContactName
	}
	if contact != nil {
		return contact.Email
	}
	if payload.ContactEmail != "" {
		return payload.ContactEmail
	}
	return "unknown contact"
}
