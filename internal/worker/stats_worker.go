package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/bookingdesk/internal/domain"
	"github.com/yourorg/bookingdesk/internal/observability/metrics"
)

// StatsWorker periodically counts pending booking requests and publishes the
// count as a gauge, so dashboards see decision backlog without polling the API.
type StatsWorker struct {
	repo     domain.BookingRepository
	logger   *slog.Logger
	interval time.Duration
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(repo domain.BookingRepository, logger *slog.Logger, interval time.Duration) *StatsWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsWorker{
		repo:     repo,
		logger:   logger,
		interval: interval,
	}
}

// Start begins the stats worker loop. Runs until the context is cancelled.
func (w *StatsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("stats worker started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case <-ticker.C:
			w.publishPendingCount(ctx)
		}
	}
}

func (w *StatsWorker) publishPendingCount(ctx context.Context) {
	bookings, err := w.repo.ListAll(ctx)
	if err != nil {
		w.logger.Error("failed to list bookings for stats",
			slog.String("error", err.Error()),
		)
		return
	}

	pending := 0
	for _, b := range bookings {
		if b.Status == domain.StatusPending {
			pending++
		}
	}

	metrics.SetPending(pending)
	w.logger.Debug("published booking stats",
		slog.Int("pending", pending),
		slog.Int("total", len(bookings)),
	)
}
