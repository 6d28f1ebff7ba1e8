package service

import (
	"context"
	"log/slog"

	"github.com/yourorg/bookingdesk/internal/domain"
	"github.com/yourorg/bookingdesk/internal/observability/metrics"
)

// BookingService is the lifecycle state machine for booking requests and the
// only component that mutates a booking's status.
type BookingService struct {
	repo   domain.BookingRepository
	logger *slog.Logger
	strict bool
}

// NewBookingService creates a new booking service. When strict is true,
// accept/reject on a booking already in a terminal status fail with a
// *domain.ConflictError instead of rewriting the record.
func NewBookingService(repo domain.BookingRepository, logger *slog.Logger, strict bool) *BookingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{
		repo:   repo,
		logger: logger,
		strict: strict,
	}
}

// Submit validates a submission and persists a new booking with status
// pending. The id is assigned by the store; the client never chooses status.
func (s *BookingService) Submit(ctx context.Context, req domain.SubmissionRequest) (*domain.Booking, error) {
	booking, err := domain.NewBooking(req)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, booking)
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking submitted",
		slog.Int64("id", created.ID),
		slog.String("topic", created.Topic),
		slog.String("requested_by", created.RequestedBy),
	)
	metrics.ObserveSubmission()

	return created, nil
}

// List returns all booking requests in insertion order.
func (s *BookingService) List(ctx context.Context) ([]*domain.Booking, error) {
	return s.repo.ListAll(ctx)
}

// Accept transitions a booking to accepted and persists the full record.
func (s *BookingService) Accept(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.transition(ctx, id, domain.StatusAccepted)
}

// Reject transitions a booking to rejected and persists the full record.
func (s *BookingService) Reject(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.transition(ctx, id, domain.StatusRejected)
}

func (s *BookingService) transition(ctx context.Context, id int64, status domain.RequestStatus) (*domain.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.strict && booking.Status.Terminal() {
		return nil, &domain.ConflictError{ID: id, Status: booking.Status}
	}

	booking.Status = status
	if err := s.repo.Upsert(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info("booking transitioned",
		slog.Int64("id", id),
		slog.String("status", string(status)),
	)
	metrics.ObserveDecision(string(status))

	return booking, nil
}

// Delete removes a booking and returns the pre-deletion snapshot.
func (s *BookingService) Delete(ctx context.Context, id int64) (*domain.Booking, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking deleted", slog.Int64("id", id))
	metrics.ObserveDecision("deleted")

	return deleted, nil
}
