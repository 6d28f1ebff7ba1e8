// Package lockout throttles brute-force login attempts with a Redis-backed
// failure counter per username.
package lockout

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/yourorg/bookingdesk/internal/infrastructure/redis"
)

const (
	// DefaultMaxAttempts is the number of failures within the window after
	// which logins are refused.
	DefaultMaxAttempts = 5
	// DefaultWindow is how long failures are remembered.
	DefaultWindow = 15 * time.Minute

	keyPrefix = "login_failures:"
)

// Store counts failed logins in Redis. All operations fail open: when Redis
// is unreachable, logins proceed and the outage is logged.
type Store struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
	logger      *slog.Logger
}

// NewStore creates a lockout store. maxAttempts and window fall back to the
// defaults when non-positive.
func NewStore(client *redis.Client, maxAttempts int, window time.Duration, logger *slog.Logger) *Store {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client:      client,
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
	}
}

// Locked reports whether the username has exhausted its attempts.
func (s *Store) Locked(ctx context.Context, username string) bool {
	val, err := s.client.Get(ctx, keyPrefix+username)
	if err != nil {
		// Key missing or Redis down; either way, allow the attempt.
		return false
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return false
	}
	return count >= s.maxAttempts
}

// RecordFailure increments the failure counter and refreshes the window.
func (s *Store) RecordFailure(ctx context.Context, username string) {
	count, err := s.client.IncrWithTTL(ctx, keyPrefix+username, s.window)
	if err != nil {
		s.logger.Warn("lockout store unavailable, failing open",
			slog.String("error", err.Error()),
		)
		return
	}
	if count >= int64(s.maxAttempts) {
		s.logger.Warn("username locked out after repeated failures",
			slog.String("username", username),
			slog.Int64("failures", count),
		)
	}
}

// Clear forgets recorded failures after a successful login.
func (s *Store) Clear(ctx context.Context, username string) {
	if err := s.client.Delete(ctx, keyPrefix+username); err != nil {
		s.logger.Warn("failed to clear lockout counter",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
	}
}
