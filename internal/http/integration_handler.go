package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/internal/service"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

// IntegrationHandler connects third-party providers and drives the outbound
// telephony surface. Credentials never leave the server in responses.
type IntegrationHandler struct {
	integrations *service.IntegrationService
	telephony    *service.TelephonyService
	logger       logger.Logger
}

func NewIntegrationHandler(integrations *service.IntegrationService, telephony *service.TelephonyService, logger logger.Logger) *IntegrationHandler {
	return &IntegrationHandler{
		integrations: integrations,
		telephony:    telephony,
		logger:       logger,
	}
}

func (h *IntegrationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/integrations.connect", h.handleConnect)
	mux.HandleFunc("/api/calls.place", h.handlePlaceCall)
	mux.HandleFunc("/api/sms.send", h.handleSendSMS)
}

func (h *IntegrationHandler) handleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Provider domain.IntegrationProvider `json:"provider"`
		APIKey   string                     `json:"api_key"`
		BaseURL  string                     `json:"base_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Provider == "" {
		req.Provider = domain.IntegrationTelephony
	}

	userID, ok := domain.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Missing user", http.StatusBadRequest)
		return
	}

	if err := h.integrations.Connect(r.Context(), userID, req.Provider, req.APIKey, req.BaseURL); err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			WriteJSONError(w, validation.Message, http.StatusBadRequest)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to connect integration")
		WriteJSONError(w, "Failed to connect integration", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"connected": true,
	})
}

func (h *IntegrationHandler) handlePlaceCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		To        string  `json:"to"`
		Script    string  `json:"script"`
		ContactID *string `json:"contact_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := domain.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Missing user", http.StatusBadRequest)
		return
	}

	resp, err := h.telephony.PlaceCall(r.Context(), userID, req.To, req.Script, req.ContactID)
	if err != nil {
		h.writeTelephonyError(w, err, "Failed to place call")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"call": resp,
	})
}

func (h *IntegrationHandler) handleSendSMS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		To        string  `json:"to"`
		Body      string  `json:"body"`
		ContactID *string `json:"contact_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := domain.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Missing user", http.StatusBadRequest)
		return
	}

	resp, err := h.telephony.SendSMS(r.Context(), userID, req.To, req.Body, req.ContactID)
	if err != nil {
		h.writeTelephonyError(w, err, "Failed to send sms")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sms": resp,
	})
}

func (h *IntegrationHandler) writeTelephonyError(w http.ResponseWriter, err error, fallback string) {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		WriteJSONError(w, validation.Message, http.StatusBadRequest)
		return
	}
	var notFound *domain.ErrIntegrationNotFound
	if errors.As(err, &notFound) {
		WriteJSONError(w, "No telephony integration connected", http.StatusBadRequest)
		return
	}
	h.logger.WithField("error", err.Error()).Error(fallback)
	WriteJSONError(w, fallback, http.StatusBadGateway)
}
