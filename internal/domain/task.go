package domain

import (
	"context"
	"time"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusOpen TaskStatus = "open"
	TaskStatusDone TaskStatus = "done"
)

// Task is a follow-up item, today only produced by the workflow create_task
// action.
type Task struct {
	ID        string     `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Status    TaskStatus `json:"status" db:"status"`
	DueAt     *time.Time `json:"due_at,omitempty" db:"due_at"`
	ContactID *string    `json:"contact_id,omitempty" db:"contact_id"`
	DealID    *string    `json:"deal_id,omitempty" db:"deal_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type TaskRepository interface {
	// CreateTask inserts a task
	CreateTask(ctx context.Context, task *Task) error

	// ListTasks returns the tasks of a user, newest first
	ListTasks(ctx context.Context, userID string, limit, offset int) ([]*Task, error)
}
