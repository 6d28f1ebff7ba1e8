package handler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/bookingdesk/internal/db"
	"github.com/yourorg/bookingdesk/internal/infrastructure/redis"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	database    *sql.DB
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(database *sql.DB, redisClient *redis.Client, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		database:    database,
		redisClient: redisClient,
		logger:      logger,
	}
}

// HealthResponse represents the health status response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /healthz - simple liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready handles GET /readyz. The service is ready when the database answers
// and its schema is at the version this binary was built against. Redis is
// reported but not gating; the lockout store fails open without it.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	ready := true

	if err := h.database.PingContext(ctx); err != nil {
		checks["database"] = "error: " + err.Error()
		ready = false
	} else {
		checks["database"] = "ok"

		version, dirty, err := h.schemaVersion(ctx)
		switch {
		case err != nil:
			checks["schema"] = "error: " + err.Error()
			ready = false
		case dirty:
			checks["schema"] = fmt.Sprintf("dirty at version %d", version)
			ready = false
		case version != db.LatestSchemaVersion:
			checks["schema"] = fmt.Sprintf("at version %d, want %d", version, db.LatestSchemaVersion)
			ready = false
		default:
			checks["schema"] = "ok"
		}
	}

	if h.redisClient == nil {
		checks["redis"] = "not configured"
	} else if err := h.redisClient.Ping(ctx); err != nil {
		checks["redis"] = "error: " + err.Error()
	} else {
		checks["redis"] = "ok"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		h.logger.Warn("readiness check failed",
			slog.String("database", checks["database"]),
			slog.String("schema", checks["schema"]),
			slog.String("redis", checks["redis"]),
		)
	}

	writeJSON(w, statusCode, ReadinessResponse{Status: status, Checks: checks})
}

func (h *HealthHandler) schemaVersion(ctx context.Context) (int64, bool, error) {
	var (
		version int64
		dirty   bool
	)
	err := h.database.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations`).Scan(&version, &dirty)
	if err != nil {
		return 0, false, err
	}
	return version, dirty, nil
}
