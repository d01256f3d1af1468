package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/Leadpipe/leadpipe/internal/domain"
)

type dealRepository struct {
	db *sql.DB
}

// NewDealRepository creates a new PostgreSQL deal repository
func NewDealRepository(db *sql.DB) domain.DealRepository {
	return &dealRepository{db: db}
}

const dealColumns = `id, title, value, currency, stage_id, pipeline_id, contact_id, user_id, data, created_at, updated_at`

func scanDeal(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Deal, error) {
	var d domain.Deal
	var contactID sql.NullString
	err := scanner.Scan(
		&d.ID,
		&d.Title,
		&d.Value,
		&d.Currency,
		&d.StageID,
		&d.PipelineID,
		&contactID,
		&d.UserID,
		&d.Data,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if contactID.Valid {
		d.ContactID = &contactID.String
	}
	return &d, nil
}

func (r *dealRepository) CreateDeal(ctx context.Context, deal *domain.Deal) error {
	if deal.ID == "" {
		deal.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	deal.CreatedAt = now
	deal.UpdatedAt = now

	query := `
		INSERT INTO deals (id, title, value, currency, stage_id, pipeline_id, contact_id, user_id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		deal.ID,
		deal.Title,
		deal.Value,
		deal.Currency,
		deal.StageID,
		deal.PipelineID,
		deal.ContactID,
		deal.UserID,
		deal.Data,
		deal.CreatedAt,
		deal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}
	return nil
}

func (r *dealRepository) GetDealByID(ctx context.Context, id string) (*domain.Deal, error) {
	query := `
		SELECT ` + dealColumns + `
		FROM deals
		WHERE id = $1
	`
	deal, err := scanDeal(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrDealNotFound{Message: "deal not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return deal, nil
}

// GetDealByTitle looks a deal up by the (title, pipeline, user) natural-key
// heuristic used by webhook upserts. Oldest match wins when duplicates exist.
func (r *dealRepository) GetDealByTitle(ctx context.Context, title, pipelineID, userID string) (*domain.Deal, error) {
	query := `
		SELECT ` + dealColumns + `
		FROM deals
		WHERE title = $1 AND pipeline_id = $2 AND user_id = $3
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	deal, err := scanDeal(r.db.QueryRowContext(ctx, query, title, pipelineID, userID))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrDealNotFound{Message: "deal not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deal by title: %w", err)
	}
	return deal, nil
}

func (r *dealRepository) UpdateDeal(ctx context.Context, deal *domain.Deal) error {
	deal.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE deals
		SET value = $1,
			currency = $2,
			stage_id = $3,
			contact_id = COALESCE($4, contact_id),
			data = $5,
			updated_at = $6
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		deal.Value,
		deal.Currency,
		deal.StageID,
		deal.ContactID,
		deal.Data,
		deal.UpdatedAt,
		deal.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update deal: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrDealNotFound{Message: "deal not found"}
	}
	return nil
}

func (r *dealRepository) UpdateDealStage(ctx context.Context, dealID, stageID string) error {
	query := `
		UPDATE deals
		SET stage_id = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, stageID, time.Now().UTC(), dealID)
	if err != nil {
		return fmt.Errorf("failed to update deal stage: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrDealNotFound{Message: "deal not found"}
	}
	return nil
}

func (r *dealRepository) ListDeals(ctx context.Context, params domain.DealListParams) ([]*domain.Deal, int, error) {
	builder := sq.Select(dealColumns).
		From("deals").
		PlaceholderFormat(sq.Dollar).
		OrderBy("created_at DESC").
		Limit(uint64(params.Limit)).
		Offset(uint64(params.Offset))

	countBuilder := sq.Select("COUNT(*)").
		From("deals").
		PlaceholderFormat(sq.Dollar)

	if params.UserID != "" {
		builder = builder.Where(sq.Eq{"user_id": params.UserID})
		countBuilder = countBuilder.Where(sq.Eq{"user_id": params.UserID})
	}
	if params.PipelineID != "" {
		builder = builder.Where(sq.Eq{"pipeline_id": params.PipelineID})
		countBuilder = countBuilder.Where(sq.Eq{"pipeline_id": params.PipelineID})
	}
	if params.StageID != "" {
		builder = builder.Where(sq.Eq{"stage_id": params.StageID})
		countBuilder = countBuilder.Where(sq.Eq{"stage_id": params.StageID})
	}
	if params.ContactID != "" {
		builder = builder.Where(sq.Eq{"contact_id": params.ContactID})
		countBuilder = countBuilder.Where(sq.Eq{"contact_id": params.ContactID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build deals query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list deals: %w", err)
	}
	defer rows.Close()

	var deals []*domain.Deal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan deal: %w", err)
		}
		deals = append(deals, deal)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating deals rows: %w", err)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build deals count query: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count deals: %w", err)
	}

	return deals, total, nil
}

func (r *dealRepository) DeleteDeal(ctx context.Context, id string) error {
	query := `DELETE FROM deals WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrDealNotFound{Message: "deal not found"}
	}
	return nil
}
