package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/internal/service"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

// ActivityHandler exposes the read side of the audit trail. There is no
// create, update or delete surface: activities are written by the system.
type ActivityHandler struct {
	service *service.ActivityService
	logger  logger.Logger
}

func NewActivityHandler(svc *service.ActivityService, logger logger.Logger) *ActivityHandler {
	return &ActivityHandler{service: svc, logger: logger}
}

func (h *ActivityHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/activities.list", h.handleList)
}

func (h *ActivityHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, _ := domain.UserIDFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	params := domain.ActivityListParams{
		UserID:    userID,
		ContactID: r.URL.Query().Get("contact_id"),
		DealID:    r.URL.Query().Get("deal_id"),
		Type:      domain.ActivityType(r.URL.Query().Get("type")),
		Limit:     limit,
		Offset:    offset,
	}
	activities, total, err := h.service.ListActivities(r.Context(), params)
	if err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			WriteJSONError(w, validation.Message, http.StatusBadRequest)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to list activities")
		WriteJSONError(w, "Failed to list activities", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"activities": activities,
		"total":      total,
	})
}
