package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/internal/service"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

type TaskHandler struct {
	service *service.TaskService
	logger  logger.Logger
}

func NewTaskHandler(svc *service.TaskService, logger logger.Logger) *TaskHandler {
	return &TaskHandler{service: svc, logger: logger}
}

func (h *TaskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/tasks.list", h.handleList)
	mux.HandleFunc("/api/tasks.create", h.handleCreate)
}

func (h *TaskHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := domain.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Missing user", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	tasks, err := h.service.ListTasks(r.Context(), userID, limit, offset)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list tasks")
		WriteJSONError(w, "Failed to list tasks", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
	})
}

func (h *TaskHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var task domain.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if userID, ok := domain.UserIDFromContext(r.Context()); ok && task.UserID == "" {
		task.UserID = userID
	}

	if err := h.service.CreateTask(r.Context(), &task); err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			WriteJSONError(w, validation.Message, http.StatusBadRequest)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to create task")
		WriteJSONError(w, "Failed to create task", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"task": task,
	})
}
