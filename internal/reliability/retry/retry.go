// Package retry runs an operation with exponential backoff. Used only for
// startup dependencies; request-path operations never retry silently.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Config bounds the retry loop.
type Config struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultConfig is tuned for process startup: a short first pause, capped
// growth, and a small attempt count so a dead dependency fails fast.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:       3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// backoff returns the pause before the next attempt. attempt is zero-based.
func (c *Config) backoff(attempt int) time.Duration {
	d := time.Duration(float64(c.InitialBackoff) * math.Pow(c.BackoffMultiplier, float64(attempt)))
	if d > c.MaxBackoff {
		return c.MaxBackoff
	}
	return d
}

// Retryable is the operation under retry.
type Retryable[T any] func(ctx context.Context) (T, error)

// Do runs fn until it succeeds, the attempt budget is spent, or ctx is
// cancelled. Each failed attempt is logged under op before the next pause.
func Do[T any](ctx context.Context, cfg *Config, log *slog.Logger, op string, fn Retryable[T]) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts-1 {
			break
		}
		pause := cfg.backoff(attempt)
		log.Warn("operation failed, retrying",
			slog.String("operation", op),
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("backoff", pause),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(pause):
		}
	}

	return zero, fmt.Errorf("operation '%s' failed after %d attempts: %w", op, cfg.MaxAttempts, lastErr)
}
