package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

type ContactHandler struct {
	service domain.ContactServiceInterface
	logger  logger.Logger
}

func NewContactHandler(svc domain.ContactServiceInterface, logger logger.Logger) *ContactHandler {
	return &ContactHandler{service: svc, logger: logger}
}

func (h *ContactHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/contacts.list", h.handleList)
	mux.HandleFunc("/api/contacts.get", h.handleGet)
	mux.HandleFunc("/api/contacts.create", h.handleCreate)
	mux.HandleFunc("/api/contacts.update", h.handleUpdate)
	mux.HandleFunc("/api/contacts.delete", h.handleDelete)
}

func (h *ContactHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, _ := domain.UserIDFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	params := domain.ContactListParams{
		UserID: userID,
		Email:  r.URL.Query().Get("email"),
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	}
	contacts, total, err := h.service.ListContacts(r.Context(), params)
	if err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			WriteJSONError(w, validation.Message, http.StatusBadRequest)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to list contacts")
		WriteJSONError(w, "Failed to list contacts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contacts": contacts,
		"total":    total,
	})
}

func (h *ContactHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJSONError(w, "Missing id", http.StatusBadRequest)
		return
	}

	contact, err := h.service.GetContactByID(r.Context(), id)
	if err != nil {
		var notFound *domain.ErrContactNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Contact not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to get contact")
		WriteJSONError(w, "Failed to get contact", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contact": contact,
	})
}

func (h *ContactHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var contact domain.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if userID, ok := domain.UserIDFromContext(r.Context()); ok && contact.UserID == "" {
		contact.UserID = userID
	}

	if err := h.service.CreateContact(r.Context(), &contact); err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			WriteJSONError(w, validation.Message, http.StatusBadRequest)
			return
		}
		var emailExists *domain.ErrContactEmailExists
		if errors.As(err, &emailExists) {
			WriteJSONError(w, "A contact with this email already exists", http.StatusConflict)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to create contact")
		WriteJSONError(w, "Failed to create contact", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"contact": contact,
	})
}

func (h *ContactHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var contact domain.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if userID, ok := domain.UserIDFromContext(r.Context()); ok && contact.UserID == "" {
		contact.UserID = userID
	}

	if err := h.service.UpdateContact(r.Context(), &contact); err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			WriteJSONError(w, validation.Message, http.StatusBadRequest)
			return
		}
		var notFound *domain.ErrContactNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Contact not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to update contact")
		WriteJSONError(w, "Failed to update contact", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contact": contact,
	})
}

func (h *ContactHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeleteContact(r.Context(), req.ID); err != nil {
		var notFound *domain.ErrContactNotFound
		if errors.As(err, &notFound) {
			WriteJSONError(w, "Contact not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to delete contact")
		WriteJSONError(w, "Failed to delete contact", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deleted": true,
	})
}
