package service

import (
	"context"
	"fmt"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

type DealService struct {
	dealRepo     domain.DealRepository
	pipelineRepo domain.PipelineRepository
	activityRepo domain.ActivityRepository
	logger       logger.Logger
}

func NewDealService(dealRepo domain.DealRepository, pipelineRepo domain.PipelineRepository, activityRepo domain.ActivityRepository, logger logger.Logger) *DealService {
	return &DealService{
		dealRepo:     dealRepo,
		pipelineRepo: pipelineRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// CreateDeal validates the deal and checks the stage belongs to the pipeline
// before inserting.
func (s *DealService) CreateDeal(ctx context.Context, deal *domain.Deal) error {
	if deal.Currency == "" {
		deal.Currency = "USD"
	}
	if err := deal.Validate(); err != nil {
		return err
	}
	pipeline, err := s.pipelineRepo.GetPipelineByID(ctx, deal.PipelineID)
	if err != nil {
		return err
	}
	if pipeline.FindStageByID(deal.StageID) == nil {
		return domain.NewValidationError("stage does not belong to pipeline")
	}
	return s.dealRepo.CreateDeal(ctx, deal)
}

func (s *DealService) GetDealByID(ctx context.Context, id string) (*domain.Deal, error) {
	return s.dealRepo.GetDealByID(ctx, id)
}

func (s *DealService) ListDeals(ctx context.Context, params domain.DealListParams) ([]*domain.Deal, int, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}
	return s.dealRepo.ListDeals(ctx, params)
}

func (s *DealService) UpdateDeal(ctx context.Context, deal *domain.Deal) error {
	if deal.ID == "" {
		return domain.NewValidationError("id is required")
	}
	return s.dealRepo.UpdateDeal(ctx, deal)
}

// MoveDealStage moves a deal to another stage of its pipeline and records
// the move in the activity trail.
func (s *DealService) MoveDealStage(ctx context.Context, dealID, stageID string) error {
	deal, err := s.dealRepo.GetDealByID(ctx, dealID)
	if err != nil {
		return err
	}
	pipeline, err := s.pipelineRepo.GetPipelineByID(ctx, deal.PipelineID)
	if err != nil {
		return err
	}
	stage := pipeline.FindStageByID(stageID)
	if stage == nil {
		return domain.NewValidationError("stage does not belong to pipeline")
	}
	if stage.ID == deal.StageID {
		return nil
	}
	if err := s.dealRepo.UpdateDealStage(ctx, dealID, stageID); err != nil {
		return err
	}

	activity := &domain.Activity{
		Type:   domain.ActivityDealStatusChanged,
		Note:   fmt.Sprintf("Deal %q moved to %s", deal.Title, stage.Name),
		DealID: &deal.ID,
		UserID: deal.UserID,
	}
	if deal.ContactID != nil {
		activity.ContactID = deal.ContactID
	}
	if err := s.activityRepo.CreateActivity(ctx, activity); err != nil {
		s.logger.WithField("deal_id", dealID).Error("failed to record stage move")
	}
	return nil
}

func (s *DealService) DeleteDeal(ctx context.Context, id string) error {
	return s.dealRepo.DeleteDeal(ctx, id)
}
