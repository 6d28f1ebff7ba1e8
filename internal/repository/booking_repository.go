package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/bookingdesk/internal/domain"
)

// bookingRow is the storage representation of a booking request. Mapping to
// and from domain.Booking is explicit and lives only in this package.
type bookingRow struct {
	id              int64
	eventTime       time.Time
	address         []byte // JSONB
	topic           string
	durationMinutes int
	requestedBy     string
	status          string
}

func toRow(b *domain.Booking) (*bookingRow, error) {
	addr, err := json.Marshal(b.Address)
	if err != nil {
		return nil, fmt.Errorf("marshal address: %w", err)
	}
	return &bookingRow{
		id:              b.ID,
		eventTime:       b.EventTime,
		address:         addr,
		topic:           b.Topic,
		durationMinutes: b.DurationMinutes,
		requestedBy:     b.RequestedBy,
		status:          string(b.Status),
	}, nil
}

func (r *bookingRow) toDomain() (*domain.Booking, error) {
	var addr domain.Address
	if err := json.Unmarshal(r.address, &addr); err != nil {
		return nil, fmt.Errorf("unmarshal address for booking %d: %w", r.id, err)
	}
	return &domain.Booking{
		ID:              r.id,
		EventTime:       r.eventTime,
		Address:         addr,
		Topic:           r.topic,
		DurationMinutes: r.durationMinutes,
		RequestedBy:     r.requestedBy,
		Status:          domain.RequestStatus(r.status),
	}, nil
}

// PostgresBookingRepository implements domain.BookingRepository using
// PostgreSQL. Every mutating operation runs in its own transaction so a
// partial write is never observable.
type PostgresBookingRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresBookingRepository creates a new booking repository
func NewPostgresBookingRepository(db *sql.DB, logger *slog.Logger) *PostgresBookingRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBookingRepository{
		db:     db,
		logger: logger,
	}
}

// Create assigns a new id and writes the record atomically.
func (r *PostgresBookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	row, err := toRow(b)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO booking_requests (event_time, address, topic, duration_minutes, requested_by, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err = tx.QueryRowContext(ctx, query,
		row.eventTime,
		row.address,
		row.topic,
		row.durationMinutes,
		row.requestedBy,
		row.status,
	).Scan(&id)
	if err != nil {
		r.logger.Error("failed to create booking", slog.String("error", err.Error()))
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}

	created := *b
	created.ID = id
	return &created, nil
}

// Get returns the booking or a *domain.NotFoundError.
func (r *PostgresBookingRepository) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `
		SELECT id, event_time, address, topic, duration_minutes, requested_by, status
		FROM booking_requests
		WHERE id = $1
	`

	row := bookingRow{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&row.id,
		&row.eventTime,
		&row.address,
		&row.topic,
		&row.durationMinutes,
		&row.requestedBy,
		&row.status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{ID: id}
		}
		r.logger.Error("failed to get booking",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("get booking: %w", err)
	}

	return row.toDomain()
}

// ListAll returns every booking in insertion order.
func (r *PostgresBookingRepository) ListAll(ctx context.Context) ([]*domain.Booking, error) {
	query := `
		SELECT id, event_time, address, topic, duration_minutes, requested_by, status
		FROM booking_requests
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list bookings", slog.String("error", err.Error()))
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		row := bookingRow{}
		err := rows.Scan(
			&row.id,
			&row.eventTime,
			&row.address,
			&row.topic,
			&row.durationMinutes,
			&row.requestedBy,
			&row.status,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		b, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

// Upsert writes a full record by id, inserting or replacing the whole row.
// Idempotent: applying the same write twice yields the same stored state.
// The row lock taken by ON CONFLICT DO UPDATE serializes racing writers.
func (r *PostgresBookingRepository) Upsert(ctx context.Context, b *domain.Booking) error {
	row, err := toRow(b)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO booking_requests (id, event_time, address, topic, duration_minutes, requested_by, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			event_time = EXCLUDED.event_time,
			address = EXCLUDED.address,
			topic = EXCLUDED.topic,
			duration_minutes = EXCLUDED.duration_minutes,
			requested_by = EXCLUDED.requested_by,
			status = EXCLUDED.status
	`

	_, err = tx.ExecContext(ctx, query,
		row.id,
		row.eventTime,
		row.address,
		row.topic,
		row.durationMinutes,
		row.requestedBy,
		row.status,
	)
	if err != nil {
		r.logger.Error("failed to upsert booking",
			slog.Int64("id", b.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("upsert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Delete removes the record and returns the value as it was immediately
// before deletion. The FOR UPDATE read and the delete share one transaction
// so the snapshot cannot race a concurrent writer.
func (r *PostgresBookingRepository) Delete(ctx context.Context, id int64) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT id, event_time, address, topic, duration_minutes, requested_by, status
		FROM booking_requests
		WHERE id = $1
		FOR UPDATE
	`

	row := bookingRow{}
	err = tx.QueryRowContext(ctx, query, id).Scan(
		&row.id,
		&row.eventTime,
		&row.address,
		&row.topic,
		&row.durationMinutes,
		&row.requestedBy,
		&row.status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("lock booking for delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM booking_requests WHERE id = $1`, id); err != nil {
		r.logger.Error("failed to delete booking",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("delete booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete: %w", err)
	}

	return row.toDomain()
}
