package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Leadpipe/leadpipe/internal/domain"
)

type pipelineRepository struct {
	db *sql.DB
}

// NewPipelineRepository creates a new PostgreSQL pipeline repository
func NewPipelineRepository(db *sql.DB) domain.PipelineRepository {
	return &pipelineRepository{db: db}
}

// CreatePipeline inserts the pipeline and its stages in one transaction so a
// half-created default pipeline can never be observed by a concurrent
// delivery.
func (r *pipelineRepository) CreatePipeline(ctx context.Context, pipeline *domain.Pipeline) error {
	if pipeline.ID == "" {
		pipeline.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	pipeline.CreatedAt = now
	pipeline.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO pipelines (id, name, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = tx.ExecContext(ctx, query,
		pipeline.ID,
		pipeline.Name,
		pipeline.UserID,
		pipeline.CreatedAt,
		pipeline.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	stageQuery := `
		INSERT INTO pipeline_stages (id, name, position, pipeline_id)
		VALUES ($1, $2, $3, $4)
	`
	for _, stage := range pipeline.Stages {
		if stage.ID == "" {
			stage.ID = uuid.New().String()
		}
		stage.PipelineID = pipeline.ID
		if _, err := tx.ExecContext(ctx, stageQuery, stage.ID, stage.Name, stage.Position, stage.PipelineID); err != nil {
			return fmt.Errorf("failed to create pipeline stage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *pipelineRepository) loadStages(ctx context.Context, pipelineID string) ([]*domain.PipelineStage, error) {
	query := `
		SELECT id, name, position, pipeline_id
		FROM pipeline_stages
		WHERE pipeline_id = $1
		ORDER BY position ASC
	`
	rows, err := r.db.QueryContext(ctx, query, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline stages: %w", err)
	}
	defer rows.Close()

	var stages []*domain.PipelineStage
	for rows.Next() {
		var s domain.PipelineStage
		if err := rows.Scan(&s.ID, &s.Name, &s.Position, &s.PipelineID); err != nil {
			return nil, fmt.Errorf("failed to scan pipeline stage: %w", err)
		}
		stages = append(stages, &s)
	}
	return stages, rows.Err()
}

func scanPipeline(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Pipeline, error) {
	var p domain.Pipeline
	err := scanner.Scan(&p.ID, &p.Name, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pipelineRepository) GetPipelineByID(ctx context.Context, id string) (*domain.Pipeline, error) {
	query := `
		SELECT id, name, user_id, created_at, updated_at
		FROM pipelines
		WHERE id = $1
	`
	pipeline, err := scanPipeline(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrPipelineNotFound{Message: "pipeline not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline: %w", err)
	}

	pipeline.Stages, err = r.loadStages(ctx, pipeline.ID)
	if err != nil {
		return nil, err
	}
	return pipeline, nil
}

// GetEarliestPipelineByUser returns the user's oldest pipeline. The explicit
// created_at ordering removes the "whatever the storage layer returns first"
// nondeterminism of the original system.
func (r *pipelineRepository) GetEarliestPipelineByUser(ctx context.Context, userID string) (*domain.Pipeline, error) {
	query := `
		SELECT id, name, user_id, created_at, updated_at
		FROM pipelines
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	pipeline, err := scanPipeline(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrPipelineNotFound{Message: "no pipeline for user"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline: %w", err)
	}

	pipeline.Stages, err = r.loadStages(ctx, pipeline.ID)
	if err != nil {
		return nil, err
	}
	return pipeline, nil
}

func (r *pipelineRepository) ListPipelines(ctx context.Context, userID string) ([]*domain.Pipeline, error) {
	query := `
		SELECT id, name, user_id, created_at, updated_at
		FROM pipelines
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipelines: %w", err)
	}
	defer rows.Close()

	var pipelines []*domain.Pipeline
	for rows.Next() {
		pipeline, err := scanPipeline(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pipeline: %w", err)
		}
		pipelines = append(pipelines, pipeline)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pipelines rows: %w", err)
	}

	for _, pipeline := range pipelines {
		pipeline.Stages, err = r.loadStages(ctx, pipeline.ID)
		if err != nil {
			return nil, err
		}
	}
	return pipelines, nil
}
