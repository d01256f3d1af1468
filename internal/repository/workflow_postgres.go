package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Leadpipe/leadpipe/internal/domain"
)

type workflowRepository struct {
	db *sql.DB
}

// NewWorkflowRepository creates a new PostgreSQL workflow repository
func NewWorkflowRepository(db *sql.DB) domain.WorkflowRepository {
	return &workflowRepository{db: db}
}

const workflowColumns = `id, name, user_id, status, trigger_events, conditions, actions, created_at, updated_at`

func scanWorkflow(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Workflow, error) {
	var w domain.Workflow
	var triggerEvents, conditions, actions []byte
	err := scanner.Scan(
		&w.ID,
		&w.Name,
		&w.UserID,
		&w.Status,
		&triggerEvents,
		&conditions,
		&actions,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(triggerEvents, &w.TriggerEvents); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trigger events: %w", err)
	}
	if err := json.Unmarshal(conditions, &w.Conditions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conditions: %w", err)
	}
	if err := json.Unmarshal(actions, &w.Actions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
	}
	return &w, nil
}

func (r *workflowRepository) CreateWorkflow(ctx context.Context, workflow *domain.Workflow) error {
	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	triggerEvents, err := json.Marshal(workflow.TriggerEvents)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger events: %w", err)
	}
	conditions, err := json.Marshal(workflow.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal conditions: %w", err)
	}
	actions, err := json.Marshal(workflow.Actions)
	if err != nil {
		return fmt.Errorf("failed to marshal actions: %w", err)
	}

	query := `
		INSERT INTO workflows (id, name, user_id, status, trigger_events, conditions, actions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.UserID,
		workflow.Status,
		triggerEvents,
		conditions,
		actions,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create workflow: %w", err)
	}
	return nil
}

func (r *workflowRepository) GetWorkflowByID(ctx context.Context, id string) (*domain.Workflow, error) {
	query := `
		SELECT ` + workflowColumns + `
		FROM workflows
		WHERE id = $1
	`
	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrWorkflowNotFound{Message: "workflow not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return workflow, nil
}

// ListActiveByEvent returns the active workflows of a user listening for the
// event. The jsonb ? operator tests string membership in the trigger array.
func (r *workflowRepository) ListActiveByEvent(ctx context.Context, userID, eventName string) ([]*domain.Workflow, error) {
	query := `
		SELECT ` + workflowColumns + `
		FROM workflows
		WHERE user_id = $1 AND status = $2 AND trigger_events ? $3
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, domain.WorkflowStatusActive, eventName)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows by event: %w", err)
	}
	defer rows.Close()

	var workflows []*domain.Workflow
	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, workflow)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflows rows: %w", err)
	}
	return workflows, nil
}

func (r *workflowRepository) ListWorkflows(ctx context.Context, userID string) ([]*domain.Workflow, error) {
	query := `
		SELECT ` + workflowColumns + `
		FROM workflows
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []*domain.Workflow
	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, workflow)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflows rows: %w", err)
	}
	return workflows, nil
}

func (r *workflowRepository) UpdateWorkflowStatus(ctx context.Context, id string, status domain.WorkflowStatus) error {
	query := `
		UPDATE workflows
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update workflow status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrWorkflowNotFound{Message: "workflow not found"}
	}
	return nil
}
