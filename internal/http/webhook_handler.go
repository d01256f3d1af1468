package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

// maxWebhookBody caps inbound payload size; senders have no business posting
// more than a megabyte of JSON.
const maxWebhookBody = 1 << 20

// WebhookProcessor runs the ingestion flow for one delivery.
type WebhookProcessor interface {
	ProcessDelivery(ctx context.Context, endpoint string, raw []byte) (int, *domain.WebhookResponse)
}

// WebhookHandler exposes the public ingestion endpoints. Once a delivery
// passes the secret and shape gates the response is always 200 with an
// envelope body; the service decides success or recorded failure.
type WebhookHandler struct {
	service      WebhookProcessor
	logRepo      domain.WebhookLogRepository
	logger       logger.Logger
	sharedSecret string
	secretHeader string
}

func NewWebhookHandler(svc WebhookProcessor, logRepo domain.WebhookLogRepository, logger logger.Logger, sharedSecret, secretHeader string) *WebhookHandler {
	return &WebhookHandler{
		service:      svc,
		logRepo:      logRepo,
		logger:       logger,
		sharedSecret: sharedSecret,
		secretHeader: secretHeader,
	}
}

// RegisterRoutes registers the public webhook endpoints.
func (h *WebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/webhooks/appointment", h.handleInbound)
	mux.HandleFunc("/api/webhooks/status", h.handleInbound)
	mux.HandleFunc("/api/webhooks/inbound", h.handleInbound)
}

// RegisterSecureRoutes registers the authenticated audit endpoint.
func (h *WebhookHandler) RegisterSecureRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/webhookLogs.list", h.handleListLogs)
}

func (h *WebhookHandler) handleInbound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.sharedSecret != "" {
		provided := r.Header.Get(h.secretHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.sharedSecret)) != 1 {
			writeJSON(w, http.StatusUnauthorized, &domain.WebhookResponse{
				Status:  "error",
				Message: "invalid webhook secret",
			})
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, &domain.WebhookResponse{
			Status:  "error",
			Message: "failed to read request body",
		})
		return
	}
	if !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, &domain.WebhookResponse{
			Status:  "error",
			Message: "request body is not valid JSON",
		})
		return
	}

	status, resp := h.service.ProcessDelivery(r.Context(), r.URL.Path, body)
	writeJSON(w, status, resp)
}

func (h *WebhookHandler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	endpoint := r.URL.Query().Get("endpoint")
	if endpoint == "" {
		WriteJSONError(w, "Missing endpoint", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	logs, err := h.logRepo.ListWebhookLogs(r.Context(), endpoint, limit, offset)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list webhook logs")
		WriteJSONError(w, "Failed to list webhook logs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs": logs,
	})
}
