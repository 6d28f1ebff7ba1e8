package handler

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/bookingdesk/internal/domain"
	"github.com/yourorg/bookingdesk/internal/repository"
	"github.com/yourorg/bookingdesk/internal/security"
	"github.com/yourorg/bookingdesk/internal/security/audit"
	"github.com/yourorg/bookingdesk/internal/security/auth"
	"github.com/yourorg/bookingdesk/internal/security/middleware"
	"github.com/yourorg/bookingdesk/internal/service"
)

type memBookingRepo struct {
	nextID   int64
	bookings map[int64]*domain.Booking
	order    []int64
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{nextID: 1, bookings: map[int64]*domain.Booking{}}
}

func (m *memBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	stored := *b
	stored.ID = m.nextID
	m.nextID++
	m.bookings[stored.ID] = &stored
	m.order = append(m.order, stored.ID)
	return &stored, nil
}

func (m *memBookingRepo) Get(_ context.Context, id int64) (*domain.Booking, error) {
	if b, ok := m.bookings[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, &domain.NotFoundError{ID: id}
}

func (m *memBookingRepo) ListAll(_ context.Context) ([]*domain.Booking, error) {
	out := make([]*domain.Booking, 0, len(m.order))
	for _, id := range m.order {
		if b, ok := m.bookings[id]; ok {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memBookingRepo) Upsert(_ context.Context, b *domain.Booking) error {
	if _, known := m.bookings[b.ID]; !known {
		m.order = append(m.order, b.ID)
	}
	stored := *b
	m.bookings[b.ID] = &stored
	return nil
}

func (m *memBookingRepo) Delete(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, &domain.NotFoundError{ID: id}
	}
	delete(m.bookings, id)
	return b, nil
}

type memUserRepo struct {
	byUsername map[string]*domain.User
	failWith   error
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if u, ok := m.byUsername[username]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

type testServer struct {
	srv    *httptest.Server
	tokens *auth.TokenManager
	users  *memUserRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	tm := auth.NewTokenManager(priv, pub, "bookingdesk-test", 30*time.Minute)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := &memUserRepo{byUsername: map[string]*domain.User{}}
	for username, role := range map[string]domain.Role{"admin": domain.RoleAdmin, "alice": domain.RoleRequester} {
		hash, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		users.byUsername[username] = &domain.User{
			ID:           int64(len(users.byUsername) + 1),
			Username:     username,
			PasswordHash: string(hash),
			Role:         role,
		}
	}

	bookingSvc := service.NewBookingService(newMemBookingRepo(), logger, false)
	authSvc := service.NewAuthService(users, tm, nil, logger)
	authz := security.NewAuthorizationService(logger)
	auditLog := audit.NewLogger(logger)

	bookings := NewBookingHandler(bookingSvc, authz, auditLog, logger)
	login := NewLoginHandler(authSvc, auditLog, logger)

	mux := http.NewServeMux()
	mux.Handle("POST /api/login", login)
	mux.HandleFunc("POST /api/bookings", bookings.Submit)
	mux.HandleFunc("GET /api/bookings", bookings.List)
	mux.HandleFunc("POST /api/bookings/accept", bookings.Accept)
	mux.HandleFunc("POST /api/bookings/reject", bookings.Reject)
	mux.HandleFunc("DELETE /api/bookings/{id}", bookings.Delete)

	chain := middleware.RequestID(middleware.BearerAuth(tm, users, logger)(mux))
	srv := httptest.NewServer(chain)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, tokens: tm, users: users}
}

func (ts *testServer) token(t *testing.T, username string, role domain.Role) string {
	t.Helper()
	token, _, err := ts.tokens.Issue(username, role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func submitPayload() SubmitRequest {
	return SubmitRequest{
		EventTime: time.Date(2026, 10, 1, 14, 0, 0, 0, time.UTC),
		Address: AddressPayload{
			Street:  "1 Main St",
			City:    "Springfield",
			Country: "USA",
		},
		Topic:           "Team offsite",
		DurationMinutes: 90,
		RequestedBy:     "alice@example.com",
	}
}

func TestSubmitReturnsCreatedPendingBooking(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "alice", domain.RoleRequester)

	resp, raw := ts.do(t, http.MethodPost, "/api/bookings", token, submitPayload())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, raw)
	}

	var got BookingResponse
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 1 || got.Status != "pending" {
		t.Fatalf("unexpected booking: %+v", got)
	}
	if got.Address.Country != "United States" {
		t.Fatalf("country not canonicalized: %q", got.Address.Country)
	}
}

func TestSubmitInvalidCountryReturns422(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "alice", domain.RoleRequester)

	payload := submitPayload()
	payload.Address.Country = "Narnia"
	resp, raw := ts.do(t, http.MethodPost, "/api/bookings", token, payload)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.StatusCode, raw)
	}
}

func TestRequesterCannotListOrDecide(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "alice", domain.RoleRequester)

	for _, tc := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/bookings", nil},
		{http.MethodPost, "/api/bookings/accept", DecisionRequest{ID: 1}},
		{http.MethodPost, "/api/bookings/reject", DecisionRequest{ID: 1}},
		{http.MethodDelete, "/api/bookings/1", nil},
	} {
		resp, raw := ts.do(t, tc.method, tc.path, token, tc.body)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403, got %d: %s", tc.method, tc.path, resp.StatusCode, raw)
		}
	}
}

func TestAdminLifecycleEndToEnd(t *testing.T) {
	ts := newTestServer(t)
	requester := ts.token(t, "alice", domain.RoleRequester)
	admin := ts.token(t, "admin", domain.RoleAdmin)

	resp, raw := ts.do(t, http.MethodPost, "/api/bookings", requester, submitPayload())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d: %s", resp.StatusCode, raw)
	}

	resp, raw = ts.do(t, http.MethodPost, "/api/bookings/accept", admin, DecisionRequest{ID: 1})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d: %s", resp.StatusCode, raw)
	}
	var accepted BookingResponse
	if err := json.Unmarshal(raw, &accepted); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if accepted.Status != "accepted" {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}

	resp, raw = ts.do(t, http.MethodDelete, "/api/bookings/1", admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", resp.StatusCode, raw)
	}
	var deleted BookingResponse
	if err := json.Unmarshal(raw, &deleted); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if deleted.Status != "accepted" {
		t.Fatalf("delete should return last stored state, got %s", deleted.Status)
	}

	resp, raw = ts.do(t, http.MethodDelete, "/api/bookings/1", admin, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d: %s", resp.StatusCode, raw)
	}
}

func TestDecideUnknownIDReturns404(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.token(t, "admin", domain.RoleAdmin)

	resp, raw := ts.do(t, http.MethodPost, "/api/bookings/accept", admin, DecisionRequest{ID: 99})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.StatusCode, raw)
	}
	var body map[string]string
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["error"] == "" {
		t.Fatalf("expected error message naming the id, got %s", raw)
	}
}

func TestDeleteNonNumericIDReturns422(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.token(t, "admin", domain.RoleAdmin)

	for _, bad := range []string{"abc", "0", "-3"} {
		resp, raw := ts.do(t, http.MethodDelete, "/api/bookings/"+bad, admin, nil)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("id %q: expected 422, got %d: %s", bad, resp.StatusCode, raw)
		}
	}
}

func TestMissingAndBadTokens(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodGet, "/api/bookings", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", resp.StatusCode)
	}

	resp, _ = ts.do(t, http.MethodGet, "/api/bookings", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", resp.StatusCode)
	}
}

func TestDisabledUserRejectedDespiteValidToken(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "alice", domain.RoleRequester)
	ts.users.byUsername["alice"].Disabled = true

	resp, raw := ts.do(t, http.MethodPost, "/api/bookings", token, submitPayload())
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for disabled user, got %d: %s", resp.StatusCode, raw)
	}
}

func TestUserStoreOutageIsNotAnAuthError(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "admin", domain.RoleAdmin)
	ts.users.failWith = errors.New("pq: connection refused")

	resp, raw := ts.do(t, http.MethodGet, "/api/bookings", token, nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 when the credential store is down, got %d: %s", resp.StatusCode, raw)
	}
	var body map[string]string
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["error"] != "internal server error" {
		t.Fatalf("store failure must surface generically, got %q", body["error"])
	}
}

func TestTokenForDeletedUserRejected(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "ghost", domain.RoleAdmin)

	resp, _ := ts.do(t, http.MethodGet, "/api/bookings", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown subject, got %d", resp.StatusCode)
	}
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, raw := ts.do(t, http.MethodPost, "/api/login", "", LoginRequest{Username: "admin", Password: "Password123"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.StatusCode, raw)
	}
	var result service.LoginResult
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.TokenType != "bearer" || result.Token == "" {
		t.Fatalf("unexpected login result: %+v", result)
	}

	// The issued token works against a protected endpoint.
	resp, raw = ts.do(t, http.MethodGet, "/api/bookings", result.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list with issued token: expected 200, got %d: %s", resp.StatusCode, raw)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/login", "", LoginRequest{Username: "admin", Password: "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", resp.StatusCode)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/login", "", LoginRequest{Username: "nobody", Password: "whatever"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown user: expected 401, got %d", resp.StatusCode)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPost, "/api/login", "", LoginRequest{Username: "admin", Password: "Password123"})
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header")
	}
}

func TestListReflectsSubmissions(t *testing.T) {
	ts := newTestServer(t)
	requester := ts.token(t, "alice", domain.RoleRequester)
	admin := ts.token(t, "admin", domain.RoleAdmin)

	for i := 0; i < 3; i++ {
		payload := submitPayload()
		payload.Topic = fmt.Sprintf("Meeting %d", i+1)
		resp, raw := ts.do(t, http.MethodPost, "/api/bookings", requester, payload)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("submit %d: expected 201, got %d: %s", i, resp.StatusCode, raw)
		}
	}

	resp, raw := ts.do(t, http.MethodGet, "/api/bookings", admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d: %s", resp.StatusCode, raw)
	}
	var all []BookingResponse
	if err := json.Unmarshal(raw, &all); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 bookings, got %d", len(all))
	}
	if all[0].Topic != "Meeting 1" || all[2].Topic != "Meeting 3" {
		t.Fatalf("insertion order not preserved: %+v", all)
	}
}
