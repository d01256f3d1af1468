package service

import (
	"context"

	"github.com/Leadpipe/leadpipe/internal/domain"
)

// ActivityService exposes the append-only activity trail.
type ActivityService struct {
	repo domain.ActivityRepository
}

func NewActivityService(repo domain.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

func (s *ActivityService) ListActivities(ctx context.Context, params domain.ActivityListParams) ([]*domain.Activity, int, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}
	return s.repo.ListActivities(ctx, params)
}
