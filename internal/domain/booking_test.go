package domain

import (
	"errors"
	"testing"
	"time"
)

func validAddress(t *testing.T) Address {
	t.Helper()
	addr, err := NewAddress("1 Main St", "Springfield", nil, "USA")
	if err != nil {
		t.Fatalf("NewAddress failed: %v", err)
	}
	return addr
}

func validSubmission(t *testing.T) SubmissionRequest {
	t.Helper()
	return SubmissionRequest{
		EventTime:       time.Date(2026, 9, 12, 15, 0, 0, 0, time.UTC),
		Address:         validAddress(t),
		Topic:           "quarterly planning",
		DurationMinutes: 60,
		RequestedBy:     "a@b.com",
	}
}

func TestNewAddressNormalizesCountry(t *testing.T) {
	addr := validAddress(t)
	if addr.Country != "United States" {
		t.Errorf("country = %q, want %q", addr.Country, "United States")
	}
}

func TestNewAddressUnmatchedCountry(t *testing.T) {
	_, err := NewAddress("1 Main St", "Springfield", nil, "Narnia")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "address.country" {
		t.Errorf("field = %q, want address.country", verr.Field)
	}
}

func TestNewAddressFieldValidation(t *testing.T) {
	empty := "   "
	cases := []struct {
		name   string
		street string
		city   string
		state  *string
		field  string
	}{
		{"empty street", "  ", "Springfield", nil, "address.street"},
		{"empty city", "1 Main St", "", nil, "address.city"},
		{"blank state", "1 Main St", "Springfield", &empty, "address.state"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAddress(tc.street, tc.city, tc.state, "USA")
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
}

func TestNewAddressTrimsAndKeepsState(t *testing.T) {
	state := " IL "
	addr, err := NewAddress(" 1 Main St ", " Springfield ", &state, "us")
	if err != nil {
		t.Fatalf("NewAddress failed: %v", err)
	}
	if addr.Street != "1 Main St" || addr.City != "Springfield" || addr.State != "IL" {
		t.Errorf("unexpected address: %+v", addr)
	}
}

func TestNewBookingDefaultsToPending(t *testing.T) {
	b, err := NewBooking(validSubmission(t))
	if err != nil {
		t.Fatalf("NewBooking failed: %v", err)
	}
	if b.Status != StatusPending {
		t.Errorf("status = %q, want pending", b.Status)
	}
	if b.ID != 0 {
		t.Errorf("id = %d, want unset", b.ID)
	}
}

func TestNewBookingValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SubmissionRequest)
		field  string
	}{
		{"zero event time", func(r *SubmissionRequest) { r.EventTime = time.Time{} }, "event_time"},
		{"blank topic", func(r *SubmissionRequest) { r.Topic = "  " }, "topic"},
		{"zero duration", func(r *SubmissionRequest) { r.DurationMinutes = 0 }, "duration_minutes"},
		{"negative duration", func(r *SubmissionRequest) { r.DurationMinutes = -5 }, "duration_minutes"},
		{"bad email", func(r *SubmissionRequest) { r.RequestedBy = "not-an-email" }, "requested_by"},
		{"email with display name", func(r *SubmissionRequest) { r.RequestedBy = "Bob <b@b.com>" }, "requested_by"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSubmission(t)
			tc.mutate(&req)
			_, err := NewBooking(req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("pending should not be terminal")
	}
	if !StatusAccepted.Terminal() || !StatusRejected.Terminal() {
		t.Error("accepted and rejected should be terminal")
	}
}
