package audit

import (
	"context"
	"log/slog"
	"time"
)

// RequestIDContextKey carries the per-request id set by the request ID
// middleware.
type RequestIDContextKey struct{}

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, username, role, action, resource, resourceID, status, details string) {
	requestID := ""
	if reqID := ctx.Value(RequestIDContextKey{}); reqID != nil {
		requestID = reqID.(string)
	}

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("username", username),
		slog.String("role", role),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestID),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogSubmission(ctx context.Context, username, role, bookingID, status string) {
	al.LogAction(ctx, username, role, "submit", "booking_request", bookingID, status, "")
}

func (al *Logger) LogDecision(ctx context.Context, username, role, decision, bookingID, status string) {
	al.LogAction(ctx, username, role, decision, "booking_request", bookingID, status, "")
}

func (al *Logger) LogLogin(ctx context.Context, username, status string) {
	al.LogAction(ctx, username, "", "login", "session", "", status, "")
}

func (al *Logger) LogDenied(ctx context.Context, username, role, reason string) {
	al.LogAction(ctx, username, role, "access_denied", "api", "", "denied", reason)
}
