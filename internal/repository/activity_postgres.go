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

type activityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new PostgreSQL activity repository
func NewActivityRepository(db *sql.DB) domain.ActivityRepository {
	return &activityRepository{db: db}
}

const activityColumns = `id, type, note, contact_id, deal_id, user_id, data, created_at`

func scanActivity(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Activity, error) {
	var a domain.Activity
	var contactID, dealID sql.NullString
	err := scanner.Scan(
		&a.ID,
		&a.Type,
		&a.Note,
		&contactID,
		&dealID,
		&a.UserID,
		&a.Data,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if contactID.Valid {
		a.ContactID = &contactID.String
	}
	if dealID.Valid {
		a.DealID = &dealID.String
	}
	return &a, nil
}

func (r *activityRepository) CreateActivity(ctx context.Context, activity *domain.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	activity.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO activities (id, type, note, contact_id, deal_id, user_id, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		activity.ID,
		activity.Type,
		activity.Note,
		activity.ContactID,
		activity.DealID,
		activity.UserID,
		activity.Data,
		activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

func (r *activityRepository) ListActivities(ctx context.Context, params domain.ActivityListParams) ([]*domain.Activity, int, error) {
	builder := sq.Select(activityColumns).
		From("activities").
		PlaceholderFormat(sq.Dollar).
		OrderBy("created_at DESC").
		Limit(uint64(params.Limit)).
		Offset(uint64(params.Offset))

	countBuilder := sq.Select("COUNT(*)").
		From("activities").
		PlaceholderFormat(sq.Dollar)

	if params.UserID != "" {
		builder = builder.Where(sq.Eq{"user_id": params.UserID})
		countBuilder = countBuilder.Where(sq.Eq{"user_id": params.UserID})
	}
	if params.ContactID != "" {
		builder = builder.Where(sq.Eq{"contact_id": params.ContactID})
		countBuilder = countBuilder.Where(sq.Eq{"contact_id": params.ContactID})
	}
	if params.DealID != "" {
		builder = builder.Where(sq.Eq{"deal_id": params.DealID})
		countBuilder = countBuilder.Where(sq.Eq{"deal_id": params.DealID})
	}
	if params.Type != "" {
		builder = builder.Where(sq.Eq{"type": params.Type})
		countBuilder = countBuilder.Where(sq.Eq{"type": params.Type})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build activities query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating activities rows: %w", err)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build activities count query: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %w", err)
	}

	return activities, total, nil
}
