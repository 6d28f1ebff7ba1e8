package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yourorg/bookingdesk/internal/domain"
	"github.com/yourorg/bookingdesk/internal/security"
	"github.com/yourorg/bookingdesk/internal/security/auth"
	"github.com/yourorg/bookingdesk/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain and security errors onto HTTP statuses. Anything
// unrecognized is logged with detail and reported as a generic 500 so store
// internals never leak to clients.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		verr     *domain.ValidationError
		nferr    *domain.NotFoundError
		conflict *domain.ConflictError
	)

	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		message = verr.Error()
	case errors.As(err, &nferr):
		status = http.StatusNotFound
		message = nferr.Error()
	case errors.As(err, &conflict):
		status = http.StatusConflict
		message = conflict.Error()
	case errors.Is(err, security.ErrForbidden):
		status = http.StatusForbidden
		message = security.ErrForbidden.Error()
	case errors.Is(err, auth.ErrInvalidCredential), errors.Is(err, auth.ErrExpiredCredential):
		status = http.StatusUnauthorized
		message = "invalid or expired token"
	case errors.Is(err, service.ErrInvalidLogin):
		status = http.StatusUnauthorized
		message = service.ErrInvalidLogin.Error()
	case errors.Is(err, service.ErrLockedOut):
		status = http.StatusTooManyRequests
		message = service.ErrLockedOut.Error()
	default:
		logger.Error("request failed", slog.String("error", err.Error()))
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
