package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/internal/service"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

type AuthHandler struct {
	service domain.AuthServiceInterface
	logger  logger.Logger
}

func NewAuthHandler(svc domain.AuthServiceInterface, logger logger.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth.register", h.handleRegister)
	mux.HandleFunc("/api/auth.login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input domain.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Register(r.Context(), input)
	if err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			WriteJSONError(w, validation.Message, http.StatusBadRequest)
			return
		}
		var exists *domain.ErrUserExists
		if errors.As(err, &exists) {
			WriteJSONError(w, "Email already registered", http.StatusConflict)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to register user")
		WriteJSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input domain.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			WriteJSONError(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to log in user")
		WriteJSONError(w, "Failed to log in", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
