package domain

import (
	"context"
	"time"
)

// ActivityType enumerates the audit record kinds this system writes.
type ActivityType string

const (
	ActivityAppointmentBooked ActivityType = "APPOINTMENT_BOOKED"
	ActivityDealStatusChanged ActivityType = "DEAL_STATUS_CHANGED"
	ActivityWorkflowExecuted  ActivityType = "WORKFLOW_EXECUTED"
	ActivityWorkflowFailed    ActivityType = "WORKFLOW_FAILED"
	ActivityEmailSimulated    ActivityType = "EMAIL_SIMULATED"
	ActivityTagAdded          ActivityType = "TAG_ADDED"
	ActivityCallPlaced        ActivityType = "CALL_PLACED"
	ActivitySMSSent           ActivityType = "SMS_SENT"
)

// Activity is an immutable append-only audit record. There is deliberately no
// update or delete operation anywhere in the system.
type Activity struct {
	ID        string       `json:"id" db:"id"`
	Type      ActivityType `json:"type" db:"type"`
	Note      string       `json:"note" db:"note"`
	ContactID *string      `json:"contact_id,omitempty" db:"contact_id"`
	DealID    *string      `json:"deal_id,omitempty" db:"deal_id"`
	UserID    string       `json:"user_id" db:"user_id"`
	Data      JSONMap      `json:"data,omitempty" db:"data"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// ActivityListParams filters the activities.list endpoint
type ActivityListParams struct {
	UserID    string       `json:"user_id,omitempty"`
	ContactID string       `json:"contact_id,omitempty"`
	DealID    string       `json:"deal_id,omitempty"`
	Type      ActivityType `json:"type,omitempty"`
	Limit     int          `json:"limit,omitempty"`
	Offset    int          `json:"offset,omitempty"`
}

func (p *ActivityListParams) Validate() error {
	if p.Limit < 0 || p.Offset < 0 {
		return NewValidationError("limit and offset cannot be negative")
	}
	if p.Limit == 0 {
		p.Limit = 50
	}
	if p.Limit > 200 {
		p.Limit = 200
	}
	return nil
}

type ActivityRepository interface {
	// CreateActivity appends an activity record
	CreateActivity(ctx context.Context, activity *Activity) error

	// ListActivities returns a filtered page of activities, newest first
	ListActivities(ctx context.Context, params ActivityListParams) ([]*Activity, int, error)
}
