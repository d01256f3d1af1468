package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/internal/service"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

type WorkflowHandler struct {
	service *service.WorkflowService
	logger  logger.Logger
}

func NewWorkflowHandler(svc *service.WorkflowService, logger logger.Logger) *WorkflowHandler {
	return &WorkflowHandler{service: svc, logger: logger}
}

func (h *WorkflowHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/workflows.list", h.handleList)
	mux.HandleFunc("/api/workflows.create", h.handleCreate)
	mux.HandleFunc("/api/workflows.setStatus", h.handleSetStatus)
}

func (h *WorkflowHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := domain.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Missing user", http.StatusBadRequest)
		return
	}

	workflows, err := h.service.ListWorkflows(r.Context(), userID)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list workflows")
		WriteJSONError(w, "Failed to list workflows", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"workflows": workflows,
	})
}

func (h *WorkflowHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var workflow domain.Workflow
	if err := json.NewDecoder(r.Body).Decode(&workflow); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if userID, ok := domain.UserIDFromContext(r.Context()); ok && workflow.UserID == "" {
		workflow.UserID = userID
	}

	if err := h.service.CreateWorkflow(r.Context(), &workflow); err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			WriteJSONError(w, validation.Message, http.StatusBadRequest)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to create workflow")
		WriteJSONError(w, "Failed to create workflow", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"workflow": workflow,
	})
}

func (h *WorkflowHandler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID     string                `json:"id"`
		Status domain.WorkflowStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		WriteJSONError(w, "Missing id", http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateWorkflowStatus(r.Context(), req.ID, req.Status); err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			WriteJSONError(w, validation.Message, http.StatusBadRequest)
			return
		}
		var notFound *domain.ErrWorkflowNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Workflow not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to update workflow status")
		WriteJSONError(w, "Failed to update workflow status", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"updated": true,
	})
}
