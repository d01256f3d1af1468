package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

// WorkflowService runs internal automations and manages their definitions.
// Execution is strictly best effort: every attempt, success or failure, is
// written to the activity trail and no error ever escapes Trigger.
type WorkflowService struct {
	workflowRepo domain.WorkflowRepository
	taskRepo     domain.TaskRepository
	dealRepo     domain.DealRepository
	pipelineRepo domain.PipelineRepository
	activityRepo domain.ActivityRepository
	logger       logger.Logger
}

func NewWorkflowService(
	workflowRepo domain.WorkflowRepository,
	taskRepo domain.TaskRepository,
	dealRepo domain.DealRepository,
	pipelineRepo domain.PipelineRepository,
	activityRepo domain.ActivityRepository,
	logger logger.Logger,
) *WorkflowService {
	return &WorkflowService{
		workflowRepo: workflowRepo,
		taskRepo:     taskRepo,
		dealRepo:     dealRepo,
		pipelineRepo: pipelineRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

func (s *WorkflowService) CreateWorkflow(ctx context.Context, workflow *domain.Workflow) error {
	if workflow.Status == "" {
		workflow.Status = domain.WorkflowStatusActive
	}
	if err := workflow.Validate(); err != nil {
		return err
	}
	return s.workflowRepo.CreateWorkflow(ctx, workflow)
}

func (s *WorkflowService) ListWorkflows(ctx context.Context, userID string) ([]*domain.Workflow, error) {
	return s.workflowRepo.ListWorkflows(ctx, userID)
}

func (s *WorkflowService) UpdateWorkflowStatus(ctx context.Context, id string, status domain.WorkflowStatus) error {
	if !status.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid workflow status: %s", status))
	}
	return s.workflowRepo.UpdateWorkflowStatus(ctx, id, status)
}

// Trigger evaluates every active workflow listening for the event and runs
// the matching ones concurrently. Each workflow is independent; one failing
// never stops another. Nothing is returned: the outcome is observable only
// through the activity trail.
func (s *WorkflowService) Trigger(ctx context.Context, userID, eventName string, deal *domain.Deal, contact *domain.Contact, stageName string) {
	workflows, err := s.workflowRepo.ListActiveByEvent(ctx, userID, eventName)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"event": eventName,
			"error": err.Error(),
		}).Error("failed to list workflows for event")
		return
	}
	if len(workflows) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, wf := range workflows {
		wf := wf
		g.Go(func() error {
			s.runWorkflow(gctx, wf, deal, contact, stageName)
			return nil
		})
	}
	// runWorkflow swallows everything, so this only synchronizes the fan-out.
	_ = g.Wait()
}

func (s *WorkflowService) runWorkflow(ctx context.Context, wf *domain.Workflow, deal *domain.Deal, contact *domain.Contact, stageName string) {
	dealValue := 0.0
	if deal != nil {
		dealValue = deal.Value
	}

	for i := range wf.Conditions {
		ok, err := wf.Conditions[i].Matches(dealValue, stageName)
		if err != nil {
			s.recordFailure(ctx, wf, deal, contact, fmt.Sprintf("condition %d: %v", i, err))
			return
		}
		if !ok {
			return
		}
	}

	for i := range wf.Actions {
		if err := s.runAction(ctx, wf, &wf.Actions[i], deal, contact); err != nil {
			s.recordFailure(ctx, wf, deal, contact, fmt.Sprintf("action %s: %v", wf.Actions[i].Type, err))
			return
		}
	}

	activity := &domain.Activity{
		Type:   domain.ActivityWorkflowExecuted,
		Note:   fmt.Sprintf("Workflow %q executed", wf.Name),
		UserID: wf.UserID,
		Data:   domain.JSONMap{"workflow_id": wf.ID},
	}
	attachRefs(activity, deal, contact)
	if err := s.activityRepo.CreateActivity(ctx, activity); err != nil {
		s.logger.WithField("workflow_id", wf.ID).Error("failed to record workflow execution")
	}
}

func (s *WorkflowService) runAction(ctx context.Context, wf *domain.Workflow, action *domain.WorkflowAction, deal *domain.Deal, contact *domain.Contact) error {
	switch action.Type {
	case domain.ActionCreateTask:
		title := action.StringParam("title")
		if title == "" {
			title = "Follow up"
		}
		task := &domain.Task{
			Title:  title,
			Status: domain.TaskStatusOpen,
			UserID: wf.UserID,
		}
		if deal != nil {
			task.DealID = &deal.ID
		}
		if contact != nil {
			task.ContactID = &contact.ID
		}
		return s.taskRepo.CreateTask(ctx, task)

	case domain.ActionMoveStage:
		if deal == nil {
			return fmt.Errorf("move_stage requires a deal")
		}
		target := action.StringParam("stage")
		pipeline, err := s.pipelineRepo.GetPipelineByID(ctx, deal.PipelineID)
		if err != nil {
			return err
		}
		stage := pipeline.FindStageByName(target)
		if stage == nil {
			return fmt.Errorf("no stage matching %q in pipeline %s", target, pipeline.ID)
		}
		if stage.ID == deal.StageID {
			return nil
		}
		return s.dealRepo.UpdateDealStage(ctx, deal.ID, stage.ID)

	case domain.ActionSendEmail:
		// Email delivery is simulated: the activity record is the output.
		activity := &domain.Activity{
			Type:   domain.ActivityEmailSimulated,
			Note:   fmt.Sprintf("Email %q sent by workflow %q", action.StringParam("subject"), wf.Name),
			UserID: wf.UserID,
			Data:   domain.JSONMap{"workflow_id": wf.ID, "subject": action.StringParam("subject")},
		}
		attachRefs(activity, deal, contact)
		return s.activityRepo.CreateActivity(ctx, activity)

	case domain.ActionAddTag:
		activity := &domain.Activity{
			Type:   domain.ActivityTagAdded,
			Note:   fmt.Sprintf("Tag %q added by workflow %q", action.StringParam("tag"), wf.Name),
			UserID: wf.UserID,
			Data:   domain.JSONMap{"workflow_id": wf.ID, "tag": action.StringParam("tag")},
		}
		attachRefs(activity, deal, contact)
		return s.activityRepo.CreateActivity(ctx, activity)

	default:
		return fmt.Errorf("unknown action type: %s", action.Type)
	}
}

func (s *WorkflowService) recordFailure(ctx context.Context, wf *domain.Workflow, deal *domain.Deal, contact *domain.Contact, reason string) {
	s.logger.WithFields(map[string]interface{}{
		"workflow_id": wf.ID,
		"reason":      reason,
	}).Warn("workflow run failed")

	activity := &domain.Activity{
		Type:   domain.ActivityWorkflowFailed,
		Note:   fmt.Sprintf("Workflow %q failed: %s", wf.Name, reason),
		UserID: wf.UserID,
		Data:   domain.JSONMap{"workflow_id": wf.ID},
	}
	attachRefs(activity, deal, contact)
	if err := s.activityRepo.CreateActivity(ctx, activity); err != nil {
		s.logger.WithField("workflow_id", wf.ID).Error("failed to record workflow failure")
	}
}

func attachRefs(activity *domain.Activity, deal *domain.Deal, contact *domain.Contact) {
	if deal != nil {
		activity.DealID = &deal.ID
	}
	if contact != nil {
		activity.ContactID = &contact.ID
	}
}
