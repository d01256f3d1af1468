package service

import (
	"context"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

type PipelineService struct {
	repo   domain.PipelineRepository
	logger logger.Logger
}

func NewPipelineService(repo domain.PipelineRepository, logger logger.Logger) *PipelineService {
	return &PipelineService{repo: repo, logger: logger}
}

// CreatePipeline creates a pipeline with the given stage names in order. An
// empty list gets the default stage sequence.
func (s *PipelineService) CreatePipeline(ctx context.Context, pipeline *domain.Pipeline, stageNames []string) error {
	if err := pipeline.Validate(); err != nil {
		return err
	}
	if len(stageNames) == 0 {
		stageNames = domain.DefaultStageNames
	}
	pipeline.Stages = nil
	for i, name := range stageNames {
		pipeline.Stages = append(pipeline.Stages, &domain.PipelineStage{
			Name:     name,
			Position: i,
		})
	}
	return s.repo.CreatePipeline(ctx, pipeline)
}

func (s *PipelineService) GetPipelineByID(ctx context.Context, id string) (*domain.Pipeline, error) {
	return s.repo.GetPipelineByID(ctx, id)
}

func (s *PipelineService) ListPipelines(ctx context.Context, userID string) ([]*domain.Pipeline, error) {
	return s.repo.ListPipelines(ctx, userID)
}
