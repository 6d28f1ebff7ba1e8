package domain

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/yourorg/bookingdesk/internal/countries"
)

// RequestStatus is the lifecycle status of a booking request
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

// Address is the location of a requested event. Immutable once embedded in a
// Booking; construct via NewAddress so the country is always canonical.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Country string `json:"country"`
}

// NewAddress validates the parts and normalizes the country to its canonical
// name. state may be nil (absent); when present it must be non-empty after
// trimming.
func NewAddress(street, city string, state *string, country string) (Address, error) {
	street = strings.TrimSpace(street)
	if street == "" {
		return Address{}, &ValidationError{Field: "address.street", Reason: "must not be empty"}
	}

	city = strings.TrimSpace(city)
	if city == "" {
		return Address{}, &ValidationError{Field: "address.city", Reason: "must not be empty"}
	}

	var stateVal string
	if state != nil {
		stateVal = strings.TrimSpace(*state)
		if stateVal == "" {
			return Address{}, &ValidationError{Field: "address.state", Reason: "must not be empty when present"}
		}
	}

	canonical, err := countries.Normalize(country)
	if err != nil {
		if errors.Is(err, countries.ErrNoMatch) {
			return Address{}, &ValidationError{
				Field:  "address.country",
				Reason: "'" + strings.TrimSpace(country) + "' cannot be matched to any country",
			}
		}
		return Address{}, err
	}

	return Address{
		Street:  street,
		City:    city,
		State:   stateVal,
		Country: canonical,
	}, nil
}

// Booking is a booking request. ID is zero until the store assigns one.
type Booking struct {
	ID              int64
	EventTime       time.Time
	Address         Address
	Topic           string
	DurationMinutes int
	RequestedBy     string
	Status          RequestStatus
}

// SubmissionRequest carries the caller-supplied fields of a new booking
// request. Status is never part of it; submissions always start pending.
type SubmissionRequest struct {
	EventTime       time.Time
	Address         Address
	Topic           string
	DurationMinutes int
	RequestedBy     string
}

// NewBooking validates a submission and returns an unpersisted Booking with
// status pending. The address must already be constructed via NewAddress.
func NewBooking(req SubmissionRequest) (*Booking, error) {
	if req.EventTime.IsZero() {
		return nil, &ValidationError{Field: "event_time", Reason: "must be set"}
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, &ValidationError{Field: "topic", Reason: "must not be empty"}
	}

	if req.DurationMinutes <= 0 {
		return nil, &ValidationError{Field: "duration_minutes", Reason: "must be a positive integer"}
	}

	addr, err := mail.ParseAddress(req.RequestedBy)
	if err != nil || addr.Address != req.RequestedBy {
		return nil, &ValidationError{Field: "requested_by", Reason: "must be a valid email address"}
	}

	return &Booking{
		EventTime:       req.EventTime,
		Address:         req.Address,
		Topic:           topic,
		DurationMinutes: req.DurationMinutes,
		RequestedBy:     req.RequestedBy,
		Status:          StatusPending,
	}, nil
}

// Terminal reports whether the status permits no further transitions under
// strict lifecycle rules.
func (s RequestStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// BookingRepository defines durable CRUD over booking requests, keyed by id.
// Every mutating operation runs in its own transaction, committed before the
// call returns and rolled back entirely on failure.
type BookingRepository interface {
	// Create assigns a new id, writes the record, and returns the stored booking.
	Create(ctx context.Context, b *Booking) (*Booking, error)
	// Get returns the booking or a *NotFoundError.
	Get(ctx context.Context, id int64) (*Booking, error)
	// ListAll returns every booking in insertion order.
	ListAll(ctx context.Context) ([]*Booking, error)
	// Upsert writes a full record by id (insert-or-replace); idempotent.
	Upsert(ctx context.Context, b *Booking) error
	// Delete removes the record and returns the pre-deletion snapshot, or a
	// *NotFoundError. The read and the delete share one transaction.
	Delete(ctx context.Context, id int64) (*Booking, error)
}
