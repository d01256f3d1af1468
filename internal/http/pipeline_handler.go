package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

type PipelineHandler struct {
	service domain.PipelineServiceInterface
	logger  logger.Logger
}

func NewPipelineHandler(svc domain.PipelineServiceInterface, logger logger.Logger) *PipelineHandler {
	return &PipelineHandler{service: svc, logger: logger}
}

func (h *PipelineHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/pipelines.list", h.handleList)
	mux.HandleFunc("/api/pipelines.get", h.handleGet)
	mux.HandleFunc("/api/pipelines.create", h.handleCreate)
}

func (h *PipelineHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := domain.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Missing user", http.StatusBadRequest)
		return
	}

	pipelines, err := h.service.ListPipelines(r.Context(), userID)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list pipelines")
		WriteJSONError(w, "Failed to list pipelines", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pipelines": pipelines,
	})
}

func (h *PipelineHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJSONError(w, "Missing id", http.StatusBadRequest)
		return
	}

	pipeline, err := h.service.GetPipelineByID(r.Context(), id)
	if err != nil {
		var notFound *domain.ErrPipelineNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Pipeline not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to get pipeline")
		WriteJSONError(w, "Failed to get pipeline", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pipeline": pipeline,
	})
}

func (h *PipelineHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name   string   `json:"name"`
		Stages []string `json:"stages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, _ := domain.UserIDFromContext(r.Context())
	pipeline := &domain.Pipeline{Name: req.Name, UserID: userID}

	if err := h.service.CreatePipeline(r.Context(), pipeline, req.Stages); err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			WriteJSONError(w, validation.Message, http.StatusBadRequest)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to create pipeline")
		WriteJSONError(w, "Failed to create pipeline", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"pipeline": pipeline,
	})
}
