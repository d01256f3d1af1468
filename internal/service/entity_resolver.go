package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

// EntityResolver turns the loose fragments of an inbound payload into
// concrete CRM records: a contact matched by email, a pipeline (created with
// default stages when the user has none) and a stage.
type EntityResolver struct {
	contactRepo  domain.ContactRepository
	pipelineRepo domain.PipelineRepository
	logger       logger.Logger
}

func NewEntityResolver(contactRepo domain.ContactRepository, pipelineRepo domain.PipelineRepository, logger logger.Logger) *EntityResolver {
	return &EntityResolver{
		contactRepo:  contactRepo,
		pipelineRepo: pipelineRepo,
		logger:       logger,
	}
}

// ResolveContact finds the contact by email or creates it, merging the
// payload's contact fragment into whatever is already stored. Returns
// (nil, nil) when the payload has no usable email: processing continues
// without a contact link rather than failing the delivery.
func (r *EntityResolver) ResolveContact(ctx context.Context, payload *domain.InboundPayload, userID string) (*domain.Contact, error) {
	if !domain.HasUsableEmail(payload.ContactEmail) {
		return nil, nil
	}

	incoming := &domain.Contact{
		Email:  payload.ContactEmail,
		UserID: userID,
	}
	first, last := domain.SplitName(payload.ContactName)
	incoming.FirstName = first
	incoming.LastName = last
	if payload.ContactPhone != "" {
		incoming.Phone = &payload.ContactPhone
	}
	if payload.ContactCompany != "" {
		incoming.Company = &payload.ContactCompany
	}

	existing, err := r.contactRepo.GetContactByEmail(ctx, payload.ContactEmail)
	if err == nil {
		incoming.ID = existing.ID
		if err := r.contactRepo.UpdateContact(ctx, incoming); err != nil {
			return nil, fmt.Errorf("failed to merge contact: %w", err)
		}
		return r.contactRepo.GetContactByEmail(ctx, payload.ContactEmail)
	}

	var notFound *domain.ErrContactNotFound
	if !errors.As(err, &notFound) {
		return nil, err
	}

	err = r.contactRepo.CreateContact(ctx, incoming)
	if err == nil {
		return incoming, nil
	}

	// Two deliveries for the same new email can race here. The loser of the
	// unique constraint retries as a merge.
	var emailExists *domain.ErrContactEmailExists
	if errors.As(err, &emailExists) {
		existing, getErr := r.contactRepo.GetContactByEmail(ctx, payload.ContactEmail)
		if getErr != nil {
			return nil, getErr
		}
		incoming.ID = existing.ID
		if updErr := r.contactRepo.UpdateContact(ctx, incoming); updErr != nil {
			return nil, fmt.Errorf("failed to merge contact after create race: %w", updErr)
		}
		return r.contactRepo.GetContactByEmail(ctx, payload.ContactEmail)
	}
	return nil, err
}

// ResolveDefaultPipeline returns the user's earliest pipeline, creating the
// default pipeline with its fixed stage sequence when none exists.
func (r *EntityResolver) ResolveDefaultPipeline(ctx context.Context, userID string) (*domain.Pipeline, error) {
	pipeline, err := r.pipelineRepo.GetEarliestPipelineByUser(ctx, userID)
	if err == nil {
		return pipeline, nil
	}

	var notFound *domain.ErrPipelineNotFound
	if !errors.As(err, &notFound) {
		return nil, err
	}

	r.logger.WithField("user_id", userID).Info("no pipeline for user, creating default")

	pipeline = &domain.Pipeline{
		Name:   domain.DefaultPipelineName,
		UserID: userID,
	}
	for i, name := range domain.DefaultStageNames {
		pipeline.Stages = append(pipeline.Stages, &domain.PipelineStage{
			Name:     name,
			Position: i,
		})
	}
	if err := r.pipelineRepo.CreatePipeline(ctx, pipeline); err != nil {
		return nil, fmt.Errorf("failed to create default pipeline: %w", err)
	}
	return pipeline, nil
}

// ResolveStage picks a stage from the pipeline: a status name hint first
// (case-insensitive equals-or-contains), then an explicit stage ID, then the
// first stage by position. Misses never fail a delivery.
func (r *EntityResolver) ResolveStage(pipeline *domain.Pipeline, statusHint, stageID string) *domain.PipelineStage {
	if stage := pipeline.FindStageByName(statusHint); stage != nil {
		return stage
	}
	if stage := pipeline.FindStageByID(stageID); stage != nil {
		return stage
	}
	return pipeline.FirstStage()
}
