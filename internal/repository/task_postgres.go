package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Leadpipe/leadpipe/internal/domain"
)

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new PostgreSQL task repository
func NewTaskRepository(db *sql.DB) domain.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) CreateTask(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusOpen
	}
	task.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO tasks (id, title, status, due_at, contact_id, deal_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Status,
		task.DueAt,
		task.ContactID,
		task.DealID,
		task.UserID,
		task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *taskRepository) ListTasks(ctx context.Context, userID string, limit, offset int) ([]*domain.Task, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, title, status, due_at, contact_id, deal_id, user_id, created_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		var t domain.Task
		var dueAt sql.NullTime
		var contactID, dealID sql.NullString
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &dueAt, &contactID, &dealID, &t.UserID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if dueAt.Valid {
			t.DueAt = &dueAt.Time
		}
		if contactID.Valid {
			t.ContactID = &contactID.String
		}
		if dealID.Valid {
			t.DealID = &dealID.String
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks rows: %w", err)
	}
	return tasks, nil
}
