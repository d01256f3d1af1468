package domain

import (
	"context"
	"time"
)

// DealSourceKey is the provenance key set in a deal's data bag when the deal
// was created by a webhook delivery.
const DealSourceKey = "source"

// Deal represents an opportunity in a pipeline. Identity for webhook upserts
// is (title, pipeline_id, user_id) - a fallback heuristic, not a strong key.
// Event types that know the deal carry its ID directly.
type Deal struct {
	ID         string    `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Value      float64   `json:"value" db:"value"`
	Currency   string    `json:"currency" db:"currency"`
	StageID    string    `json:"stage_id" db:"stage_id"`
	PipelineID string    `json:"pipeline_id" db:"pipeline_id"`
	ContactID  *string   `json:"contact_id,omitempty" db:"contact_id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Data       JSONMap   `json:"data,omitempty" db:"data"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

func (d *Deal) Validate() error {
	if d.Title == "" {
		return NewValidationError("title is required")
	}
	if d.PipelineID == "" {
		return NewValidationError("pipeline_id is required")
	}
	if d.StageID == "" {
		return NewValidationError("stage_id is required")
	}
	if d.UserID == "" {
		return NewValidationError("user_id is required")
	}
	if d.Value < 0 {
		return NewValidationError("value cannot be negative")
	}
	return nil
}

// DealListParams filters the deals.list endpoint
type DealListParams struct {
	UserID     string `json:"user_id,omitempty"`
	PipelineID string `json:"pipeline_id,omitempty"`
	StageID    string `json:"stage_id,omitempty"`
	ContactID  string `json:"contact_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

func (p *DealListParams) Validate() error {
	if p.Limit < 0 || p.Offset < 0 {
		return NewValidationError("limit and offset cannot be negative")
	}
	if p.Limit == 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return nil
}

type DealServiceInterface interface {
	CreateDeal(ctx context.Context, deal *Deal) error
	GetDealByID(ctx context.Context, id string) (*Deal, error)
	ListDeals(ctx context.Context, params DealListParams) ([]*Deal, int, error)
	UpdateDeal(ctx context.Context, deal *Deal) error
	MoveDealStage(ctx context.Context, dealID, stageID string) error
	DeleteDeal(ctx context.Context, id string) error
}

type DealRepository interface {
	// CreateDeal inserts a deal
	CreateDeal(ctx context.Context, deal *Deal) error

	// GetDealByID retrieves a deal by ID
	GetDealByID(ctx context.Context, id string) (*Deal, error)

	// GetDealByTitle retrieves a deal by the (title, pipeline, user)
	// natural-key heuristic
	GetDealByTitle(ctx context.Context, title, pipelineID, userID string) (*Deal, error)

	// UpdateDeal updates value, stage and contact in place; title and
	// pipeline are immutable on this path
	UpdateDeal(ctx context.Context, deal *Deal) error

	// UpdateDealStage moves a deal to another stage
	UpdateDealStage(ctx context.Context, dealID, stageID string) error

	// ListDeals returns a filtered page of deals plus the total count
	ListDeals(ctx context.Context, params DealListParams) ([]*Deal, int, error)

	// DeleteDeal removes a deal by ID
	DeleteDeal(ctx context.Context, id string) error
}

// ErrDealNotFound is returned when a deal is not found
type ErrDealNotFound struct {
	Message string
}

func (e *ErrDealNotFound) Error() string {
	return e.Message
}
