package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/yourorg/bookingdesk/internal/domain"
	"github.com/yourorg/bookingdesk/internal/security"
	"github.com/yourorg/bookingdesk/internal/security/audit"
	"github.com/yourorg/bookingdesk/internal/security/auth"
	"github.com/yourorg/bookingdesk/internal/security/middleware"
	"github.com/yourorg/bookingdesk/internal/service"
)

// AddressPayload is the wire form of an event address. State is optional;
// when present it must be non-empty.
type AddressPayload struct {
	Street  string  `json:"street"`
	City    string  `json:"city"`
	State   *string `json:"state,omitempty"`
	Country string  `json:"country"`
}

// SubmitRequest is the payload for POST /api/bookings.
type SubmitRequest struct {
	EventTime       time.Time      `json:"event_time"`
	Address         AddressPayload `json:"address"`
	Topic           string         `json:"topic"`
	DurationMinutes int            `json:"duration_minutes"`
	RequestedBy     string         `json:"requested_by"`
}

// DecisionRequest is the payload for POST /api/bookings/accept and reject.
type DecisionRequest struct {
	ID int64 `json:"id"`
}

// BookingResponse is the wire form of a booking request.
type BookingResponse struct {
	ID              int64          `json:"id"`
	EventTime       time.Time      `json:"event_time"`
	Address         domain.Address `json:"address"`
	Topic           string         `json:"topic"`
	DurationMinutes int            `json:"duration_minutes"`
	RequestedBy     string         `json:"requested_by"`
	Status          string         `json:"status"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		EventTime:       b.EventTime,
		Address:         b.Address,
		Topic:           b.Topic,
		DurationMinutes: b.DurationMinutes,
		RequestedBy:     b.RequestedBy,
		Status:          string(b.Status),
	}
}

// BookingHandler serves the booking request lifecycle endpoints.
type BookingHandler struct {
	bookings *service.BookingService
	authz    *security.AuthorizationService
	audit    *audit.Logger
	logger   *slog.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *service.BookingService, authz *security.AuthorizationService, auditLog *audit.Logger, logger *slog.Logger) *BookingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingHandler{
		bookings: bookings,
		authz:    authz,
		audit:    auditLog,
		logger:   logger,
	}
}

func (h *BookingHandler) identity(w http.ResponseWriter, r *http.Request, op security.Operation) (*auth.Identity, bool) {
	id := middleware.GetIdentityFromContext(r.Context())
	if id == nil {
		h.logger.Error("identity missing from authenticated request", slog.String("path", r.URL.Path))
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing credentials"})
		return nil, false
	}
	if err := h.authz.ValidateOperation(id.Role, op); err != nil {
		h.audit.LogDenied(r.Context(), id.Username, string(id.Role), string(op))
		writeError(w, h.logger, err)
		return nil, false
	}
	return id, true
}

// Submit handles POST /api/bookings requests
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r, security.OpSubmit)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	addr, err := domain.NewAddress(req.Address.Street, req.Address.City, req.Address.State, req.Address.Country)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	booking, err := h.bookings.Submit(r.Context(), domain.SubmissionRequest{
		EventTime:       req.EventTime,
		Address:         addr,
		Topic:           req.Topic,
		DurationMinutes: req.DurationMinutes,
		RequestedBy:     req.RequestedBy,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.audit.LogSubmission(r.Context(), id.Username, string(id.Role), strconv.FormatInt(booking.ID, 10), "created")
	writeJSON(w, http.StatusCreated, toBookingResponse(booking))
}

// List handles GET /api/bookings requests
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.identity(w, r, security.OpList); !ok {
		return
	}

	bookings, err := h.bookings.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// Accept handles POST /api/bookings/accept requests
func (h *BookingHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, security.OpAccept)
}

// Reject handles POST /api/bookings/reject requests
func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, security.OpReject)
}

func (h *BookingHandler) decide(w http.ResponseWriter, r *http.Request, op security.Operation) {
	id, ok := h.identity(w, r, op)
	if !ok {
		return
	}

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.ID <= 0 {
		writeError(w, h.logger, &domain.ValidationError{Field: "id", Reason: "must be a positive integer"})
		return
	}

	var (
		booking *domain.Booking
		err     error
	)
	if op == security.OpAccept {
		booking, err = h.bookings.Accept(r.Context(), req.ID)
	} else {
		booking, err = h.bookings.Reject(r.Context(), req.ID)
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.audit.LogDecision(r.Context(), id.Username, string(id.Role), string(op), strconv.FormatInt(req.ID, 10), string(booking.Status))
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

// Delete handles DELETE /api/bookings/{id} requests
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r, security.OpDelete)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, h.logger, &domain.ValidationError{Field: "id", Reason: "must be a positive integer"})
		return
	}

	booking, err := h.bookings.Delete(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.audit.LogDecision(r.Context(), identity.Username, string(identity.Role), "delete", strconv.FormatInt(id, 10), "deleted")
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}
