package domain

import (
	"context"
	"strings"
	"time"
)

// Pipeline is an ordered set of stages owned by a user. The first pipeline by
// creation time acts as the implicit default for webhook-created deals.
type Pipeline struct {
	ID        string           `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	UserID    string           `json:"user_id" db:"user_id"`
	Stages    []*PipelineStage `json:"stages,omitempty"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}

type PipelineStage struct {
	ID         string `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	Position   int    `json:"position" db:"position"`
	PipelineID string `json:"pipeline_id" db:"pipeline_id"`
}

// DefaultStageNames is the fixed stage sequence created for a user who has no
// pipeline when the first webhook deal arrives.
var DefaultStageNames = []string{
	"New",
	"Qualified",
	"Proposal",
	"Negotiation",
	"Closed Won",
	"Closed Lost",
}

// DefaultPipelineName is the name given to synthetically created pipelines.
const DefaultPipelineName = "Sales Pipeline"

func (p *Pipeline) Validate() error {
	if p.Name == "" {
		return NewValidationError("name is required")
	}
	if p.UserID == "" {
		return NewValidationError("user_id is required")
	}
	return nil
}

// FirstStage returns the stage with the lowest position, or nil when the
// pipeline has no stages loaded.
func (p *Pipeline) FirstStage() *PipelineStage {
	var first *PipelineStage
	for _, s := range p.Stages {
		if first == nil || s.Position < first.Position {
			first = s
		}
	}
	return first
}

// FindStageByName matches a stage whose name case-insensitively equals or
// contains the hint. Returns nil when nothing matches.
func (p *Pipeline) FindStageByName(hint string) *PipelineStage {
	if hint == "" {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(hint))
	for _, s := range p.Stages {
		if strings.ToLower(s.Name) == needle {
			return s
		}
	}
	for _, s := range p.Stages {
		if strings.Contains(strings.ToLower(s.Name), needle) || strings.Contains(needle, strings.ToLower(s.Name)) {
			return s
		}
	}
	return nil
}

// FindStageByID returns the stage with the given ID, or nil.
func (p *Pipeline) FindStageByID(id string) *PipelineStage {
	if id == "" {
		return nil
	}
	for _, s := range p.Stages {
		if s.ID == id {
			return s
		}
	}
	return nil
}

type PipelineServiceInterface interface {
	CreatePipeline(ctx context.Context, pipeline *Pipeline, stageNames []string) error
	GetPipelineByID(ctx context.Context, id string) (*Pipeline, error)
	ListPipelines(ctx context.Context, userID string) ([]*Pipeline, error)
}

type PipelineRepository interface {
	// CreatePipeline inserts the pipeline and its stages in one transaction
	CreatePipeline(ctx context.Context, pipeline *Pipeline) error

	// GetPipelineByID retrieves a pipeline with its stages ordered by position
	GetPipelineByID(ctx context.Context, id string) (*Pipeline, error)

	// GetEarliestPipelineByUser returns the user's oldest pipeline with
	// stages attached, ordered explicitly by creation time ascending
	GetEarliestPipelineByUser(ctx context.Context, userID string) (*Pipeline, error)

	// ListPipelines returns all pipelines of a user with stages attached
	ListPipelines(ctx context.Context, userID string) ([]*Pipeline, error)
}

// ErrPipelineNotFound is returned when a pipeline is not found
type ErrPipelineNotFound struct {
	Message string
}

func (e *ErrPipelineNotFound) Error() string {
	return e.Message
}
