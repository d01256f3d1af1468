package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

type DealHandler struct {
	service domain.DealServiceInterface
	logger  logger.Logger
}

func NewDealHandler(svc domain.DealServiceInterface, logger logger.Logger) *DealHandler {
	return &DealHandler{service: svc, logger: logger}
}

func (h *DealHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/deals.list", h.handleList)
	mux.HandleFunc("/api/deals.get", h.handleGet)
	mux.HandleFunc("/api/deals.create", h.handleCreate)
	mux.HandleFunc("/api/deals.update", h.handleUpdate)
	mux.HandleFunc("/api/deals.moveStage", h.handleMoveStage)
	mux.HandleFunc("/api/deals.delete", h.handleDelete)
}

func (h *DealHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, _ := domain.UserIDFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	params := domain.DealListParams{
		UserID:     userID,
		PipelineID: r.URL.Query().Get("pipeline_id"),
		StageID:    r.URL.Query().Get("stage_id"),
		ContactID:  r.URL.Query().Get("contact_id"),
		Limit:      limit,
		Offset:     offset,
	}
	deals, total, err := h.service.ListDeals(r.Context(), params)
	if err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			WriteJSONError(w, validation.Message, http.StatusBadRequest)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to list deals")
		WriteJSONError(w, "Failed to list deals", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deals": deals,
		"total": total,
	})
}

func (h *DealHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJSONError(w, "Missing id", http.StatusBadRequest)
		return
	}

	deal, err := h.service.GetDealByID(r.Context(), id)
	if err != nil {
		var notFound *domain.ErrDealNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Deal not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to get deal")
		WriteJSONError(w, "Failed to get deal", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deal": deal,
	})
}

func (h *DealHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var deal domain.Deal
	if err := json.NewDecoder(r.Body).Decode(&deal); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if userID, ok := domain.UserIDFromContext(r.Context()); ok && deal.UserID == "" {
		deal.UserID = userID
	}

	if err := h.service.CreateDeal(r.Context(), &deal); err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			WriteJSONError(w, validation.Message, http.StatusBadRequest)
			return
		}
		var notFound *domain.ErrPipelineNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Pipeline not found", http.StatusBadRequest)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to create deal")
		WriteJSONError(w, "Failed to create deal", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"deal": deal,
	})
}

func (h *DealHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var deal domain.Deal
	if err := json.NewDecoder(r.Body).Decode(&deal); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateDeal(r.Context(), &deal); err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			WriteJSONError(w, validation.Message, http.StatusBadRequest)
			return
		}
		var notFound *domain.ErrDealNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Deal not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to update deal")
		WriteJSONError(w, "Failed to update deal", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deal": deal,
	})
}

func (h *DealHandler) handleMoveStage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		DealID  string `json:"deal_id"`
		StageID string `json:"stage_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DealID == "" || req.StageID == "" {
		WriteJSONError(w, "deal_id and stage_id are required", http.StatusBadRequest)
		return
	}

	if err := h.service.MoveDealStage(r.Context(), req.DealID, req.StageID); err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			WriteJSONError(w, validation.Message, http.StatusBadRequest)
			return
		}
		var notFound *domain.ErrDealNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Deal not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to move deal stage")
		WriteJSONError(w, "Failed to move deal stage", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"moved": true,
	})
}

func (h *DealHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		WriteJSONError(w, "Missing id", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteDeal(r.Context(), req.ID); err != nil {
		var notFound *domain.ErrDealNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Deal not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to delete deal")
		WriteJSONError(w, "Failed to delete deal", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deleted": true,
	})
}
