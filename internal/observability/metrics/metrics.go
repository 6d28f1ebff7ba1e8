package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookingdesk_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookingdesk_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	submissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookingdesk_submissions_total",
		Help: "Total number of booking requests submitted",
	})

	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookingdesk_decisions_total",
		Help: "Count of lifecycle decisions on booking requests",
	}, []string{"result"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookingdesk_login_attempts_total",
		Help: "Count of login attempts by outcome",
	}, []string{"outcome"})

	pendingBookings = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bookingdesk_pending_bookings",
		Help: "Number of booking requests currently pending a decision",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveSubmission increments the submission counter.
func ObserveSubmission() {
	submissionsTotal.Inc()
}

// ObserveDecision increments the decision counter with a result label
// such as "accepted", "rejected" or "deleted".
func ObserveDecision(result string) {
	decisionsTotal.WithLabelValues(result).Inc()
}

// ObserveLogin increments the login counter for the given outcome.
func ObserveLogin(outcome string) {
	loginAttempts.WithLabelValues(outcome).Inc()
}

// SetPending sets the pending bookings gauge.
func SetPending(count int) {
	if count < 0 {
		count = 0
	}
	pendingBookings.Set(float64(count))
}
