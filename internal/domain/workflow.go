package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WorkflowStatus represents the status of an internal workflow
type WorkflowStatus string

const (
	WorkflowStatusActive WorkflowStatus = "active"
	WorkflowStatusPaused WorkflowStatus = "paused"
)

// IsValid checks if the workflow status is valid
func (s WorkflowStatus) IsValid() bool {
	switch s {
	case WorkflowStatusActive, WorkflowStatusPaused:
		return true
	default:
		return false
	}
}

// ConditionField is a field a workflow condition can inspect
type ConditionField string

const (
	ConditionFieldDealValue ConditionField = "deal_value"
	ConditionFieldStageName ConditionField = "stage_name"
)

// ConditionOperator is a comparison operator in the condition language
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "eq"
	OperatorNotEquals   ConditionOperator = "neq"
	OperatorGreaterThan ConditionOperator = "gt"
	OperatorGreaterOrEq ConditionOperator = "gte"
	OperatorLessThan    ConditionOperator = "lt"
	OperatorLessOrEq    ConditionOperator = "lte"
	OperatorContains    ConditionOperator = "contains"
)

// WorkflowCondition is one field/operator/value tuple. All conditions of a
// workflow must hold for it to run; an empty condition list always runs.
type WorkflowCondition struct {
	Field    ConditionField    `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"value"`
}

func (c *WorkflowCondition) Validate() error {
	switch c.Field {
	case ConditionFieldDealValue, ConditionFieldStageName:
	default:
		return NewValidationError(fmt.Sprintf("unknown condition field: %s", c.Field))
	}
	switch c.Operator {
	case OperatorEquals, OperatorNotEquals, OperatorGreaterThan, OperatorGreaterOrEq,
		OperatorLessThan, OperatorLessOrEq, OperatorContains:
	default:
		return NewValidationError(fmt.Sprintf("unknown condition operator: %s", c.Operator))
	}
	if c.Field == ConditionFieldDealValue {
		if _, err := strconv.ParseFloat(c.Value, 64); err != nil {
			return NewValidationError("deal_value conditions require a numeric value")
		}
	}
	return nil
}

// Matches evaluates the condition against a deal's value and stage name.
func (c *WorkflowCondition) Matches(dealValue float64, stageName string) (bool, error) {
	switch c.Field {
	case ConditionFieldDealValue:
		threshold, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return false, fmt.Errorf("invalid numeric condition value %q: %w", c.Value, err)
		}
		switch c.Operator {
		case OperatorEquals:
			return dealValue == threshold, nil
		case OperatorNotEquals:
			return dealValue != threshold, nil
		case OperatorGreaterThan:
			return dealValue > threshold, nil
		case OperatorGreaterOrEq:
			return dealValue >= threshold, nil
		case OperatorLessThan:
			return dealValue < threshold, nil
		case OperatorLessOrEq:
			return dealValue <= threshold, nil
		default:
			return false, fmt.Errorf("operator %s not supported for deal_value", c.Operator)
		}
	case ConditionFieldStageName:
		have := strings.ToLower(stageName)
		want := strings.ToLower(c.Value)
		switch c.Operator {
		case OperatorEquals:
			return have == want, nil
		case OperatorNotEquals:
			return have != want, nil
		case OperatorContains:
			return strings.Contains(have, want), nil
		default:
			return false, fmt.Errorf("operator %s not supported for stage_name", c.Operator)
		}
	default:
		return false, fmt.Errorf("unknown condition field: %s", c.Field)
	}
}

// ActionType enumerates the bounded set of workflow actions
type ActionType string

const (
	ActionCreateTask ActionType = "create_task"
	ActionMoveStage  ActionType = "move_stage"
	ActionSendEmail  ActionType = "send_email"
	ActionAddTag     ActionType = "add_tag"
)

// WorkflowAction is one action executed when a workflow matches. Params carry
// action-specific settings (task title, target stage name, email subject,
// tag name).
type WorkflowAction struct {
	Type   ActionType `json:"type"`
	Params JSONMap    `json:"params,omitempty"`
}

func (a *WorkflowAction) Validate() error {
	switch a.Type {
	case ActionCreateTask, ActionMoveStage, ActionSendEmail, ActionAddTag:
		return nil
	default:
		return NewValidationError(fmt.Sprintf("unknown action type: %s", a.Type))
	}
}

// StringParam returns a string parameter of the action, or "" when absent.
func (a *WorkflowAction) StringParam(key string) string {
	if a.Params == nil {
		return ""
	}
	if v, ok := a.Params[key].(string); ok {
		return v
	}
	return ""
}

// Workflow is a simple internal automation: when one of the trigger events
// fires for a contact and all conditions hold, run the actions. Execution is
// best effort and observable only through the activity trail.
type Workflow struct {
	ID            string              `json:"id" db:"id"`
	Name          string              `json:"name" db:"name"`
	UserID        string              `json:"user_id" db:"user_id"`
	Status        WorkflowStatus      `json:"status" db:"status"`
	TriggerEvents []string            `json:"trigger_events"`
	Conditions    []WorkflowCondition `json:"conditions"`
	Actions       []WorkflowAction    `json:"actions"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

func (w *Workflow) Validate() error {
	if w.Name == "" {
		return NewValidationError("name is required")
	}
	if w.UserID == "" {
		return NewValidationError("user_id is required")
	}
	if !w.Status.IsValid() {
		return NewValidationError(fmt.Sprintf("invalid workflow status: %s", w.Status))
	}
	if len(w.TriggerEvents) == 0 {
		return NewValidationError("at least one trigger event is required")
	}
	for i := range w.Conditions {
		if err := w.Conditions[i].Validate(); err != nil {
			return fmt.Errorf("invalid condition %d: %w", i, err)
		}
	}
	if len(w.Actions) == 0 {
		return NewValidationError("at least one action is required")
	}
	for i := range w.Actions {
		if err := w.Actions[i].Validate(); err != nil {
			return fmt.Errorf("invalid action %d: %w", i, err)
		}
	}
	return nil
}

// TriggersOn reports whether the workflow listens for the given event name.
func (w *Workflow) TriggersOn(eventName string) bool {
	for _, e := range w.TriggerEvents {
		if e == eventName {
			return true
		}
	}
	return false
}

type WorkflowRepository interface {
	// CreateWorkflow inserts a workflow
	CreateWorkflow(ctx context.Context, workflow *Workflow) error

	// GetWorkflowByID retrieves a workflow by ID
	GetWorkflowByID(ctx context.Context, id string) (*Workflow, error)

	// ListActiveByEvent returns active workflows of a user whose trigger set
	// includes the event name
	ListActiveByEvent(ctx context.Context, userID, eventName string) ([]*Workflow, error)

	// ListWorkflows returns all workflows of a user
	ListWorkflows(ctx context.Context, userID string) ([]*Workflow, error)

	// UpdateWorkflowStatus activates or pauses a workflow
	UpdateWorkflowStatus(ctx context.Context, id string, status WorkflowStatus) error
}

// ErrWorkflowNotFound is returned when a workflow is not found
type ErrWorkflowNotFound struct {
	Message string
}

func (e *ErrWorkflowNotFound) Error() string {
	return e.Message
}
