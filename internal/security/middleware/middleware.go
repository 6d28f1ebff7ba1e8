package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/bookingdesk/internal/domain"
	"github.com/yourorg/bookingdesk/internal/repository"
	"github.com/yourorg/bookingdesk/internal/observability/metrics"
	"github.com/yourorg/bookingdesk/internal/security/audit"
	"github.com/yourorg/bookingdesk/internal/security/auth"
	"github.com/yourorg/bookingdesk/internal/security/ratelimit"
)

type IdentityContextKey struct{}

func isPublicPath(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/metrics", "/api/login":
		return true
	}
	return false
}

// RequestID tags every request with a request id, echoed in the
// X-Request-ID response header and carried in the context for audit logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), audit.RequestIDContextKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerAuth verifies the bearer token and resolves the caller against the
// credential store. Missing or disabled accounts are rejected even when the
// token itself is valid.
func BearerAuth(tm *auth.TokenManager, users domain.UserRepository, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing credentials"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
				return
			}

			identity, err := tm.Verify(tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			user, err := users.GetByUsername(r.Context(), identity.Username)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					// Token subject no longer exists; treat like a bad token.
					log.Warn("token for unknown user", slog.String("username", identity.Username))
					http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
					return
				}
				// Credential store failure is not an authentication verdict.
				log.Error("failed to resolve token subject",
					slog.String("username", identity.Username),
					slog.String("error", err.Error()),
				)
				http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
				return
			}
			if user.Disabled {
				log.Warn("disabled user rejected", slog.String("username", user.Username))
				http.Error(w, `{"error":"account disabled"}`, http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoginRateLimit applies a strict per-client limit to the login endpoint.
func LoginRateLimit(limiter *ratelimit.Limiter, maxReqs int, window time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/login" {
				next.ServeHTTP(w, r)
				return
			}

			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !limiter.AllowStrict(host, maxReqs, window) {
				log.Warn("login rate limit exceeded", slog.String("client", host))
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Metrics records request count and latency per method, route pattern and
// status.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := r.Pattern
		if path == "" {
			path = r.URL.Path
		}
		metrics.ObserveHTTPRequest(r.Method, path, strconv.Itoa(sw.status), time.Since(start))
	})
}

func GetIdentityFromContext(ctx context.Context) *auth.Identity {
	if id := ctx.Value(IdentityContextKey{}); id != nil {
		return id.(*auth.Identity)
	}
	return nil
}
