package service

import (
	"context"

	"github.com/Leadpipe/leadpipe/internal/domain"
)

type TaskService struct {
	repo domain.TaskRepository
}

func NewTaskService(repo domain.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) CreateTask(ctx context.Context, task *domain.Task) error {
	if task.Title == "" {
		return domain.NewValidationError("title is required")
	}
	if task.UserID == "" {
		return domain.NewValidationError("user_id is required")
	}
	return s.repo.CreateTask(ctx, task)
}

func (s *TaskService) ListTasks(ctx context.Context, userID string, limit, offset int) ([]*domain.Task, error) {
	return s.repo.ListTasks(ctx, userID, limit, offset)
}
