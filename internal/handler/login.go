package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/bookingdesk/internal/observability/metrics"
	"github.com/yourorg/bookingdesk/internal/security/audit"
	"github.com/yourorg/bookingdesk/internal/service"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler handles user authentication
type LoginHandler struct {
	auth   *service.AuthService
	audit  *audit.Logger
	logger *slog.Logger
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(auth *service.AuthService, auditLog *audit.Logger, logger *slog.Logger) *LoginHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginHandler{
		auth:   auth,
		audit:  auditLog,
		logger: logger,
	}
}

// ServeHTTP handles POST /api/login requests
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		metrics.ObserveLogin("failure")
		h.audit.LogLogin(r.Context(), req.Username, "failed")
		writeError(w, h.logger, err)
		return
	}

	metrics.ObserveLogin("success")
	h.audit.LogLogin(r.Context(), req.Username, "success")
	writeJSON(w, http.StatusOK, result)
}
