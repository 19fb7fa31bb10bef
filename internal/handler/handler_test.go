package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/eventhub/internal/auth"
	"github.com/Shivanand-hulikatti/eventhub/internal/kvstore"
	"github.com/Shivanand-hulikatti/eventhub/internal/logger"
	"github.com/Shivanand-hulikatti/eventhub/internal/metrics"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/service"
	"github.com/Shivanand-hulikatti/eventhub/internal/store"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	st := store.New(kvstore.NewMemory(), auth.NewSimulated(0))
	require.NoError(t, st.Load(context.Background()))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	log := logger.Discard()
	svc := service.NewBookingService(service.Config{ServiceFee: 5, MaxTicketsPerBooking: 10}, m, log)
	return NewRouter(NewHandler(svc, log), st, m, reg, log)
}

func do(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func login(t *testing.T, srv http.Handler, role string) {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/auth/login", model.LoginRequest{Email: "a@example.com", Password: "pw", Role: role})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	rec := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t)
	rec := do(t, srv, http.MethodOptions, "/api/events", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListEvents(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodGet, "/api/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Event](t, rec), 4)

	rec = do(t, srv, http.MethodGet, "/api/events?price=over100", nil)
	events := decode[[]model.Event](t, rec)
	require.Len(t, events, 1)
	assert.Equal(t, "2", events[0].ID)

	rec = do(t, srv, http.MethodGet, "/api/events?q=zzz", nil)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestGetEvent(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodGet, "/api/events/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Comedy Night Special", decode[model.Event](t, rec).Title)

	rec = do(t, srv, http.MethodGet, "/api/events/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/auth/login", `{"email":"bad","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/auth/login", `{"email":"a@example.com","password":"x","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown fields are rejected")

	rec = do(t, srv, http.MethodPost, "/api/auth/signup", model.SignupRequest{Name: "Ann", Email: "ann@example.com", Password: "123456"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Ann", decode[model.User](t, rec).Name)

	rec = do(t, srv, http.MethodPatch, "/api/me", `{"name":"Annie"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Annie", decode[model.User](t, rec).Name)

	rec = do(t, srv, http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Annie", decode[model.Dashboard](t, rec).User.Name)

	rec = do(t, srv, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBookAndCancel(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodPost, "/api/events/1/book", model.BookRequest{Quantity: 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	login(t, srv, "attendee")

	rec = do(t, srv, http.MethodPost, "/api/events/1/book", model.BookRequest{TicketType: "general", Quantity: 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	b := decode[model.Booking](t, rec)
	assert.Equal(t, 183.0, b.TotalPaid)
	assert.True(t, strings.HasPrefix(b.ReferenceCode, "BK"))

	rec = do(t, srv, http.MethodGet, "/api/events/1", nil)
	assert.Equal(t, 1252, decode[model.Event](t, rec).AttendeesCount)

	rec = do(t, srv, http.MethodGet, "/api/bookings", nil)
	assert.Len(t, decode[[]model.Booking](t, rec), 1)

	rec = do(t, srv, http.MethodPost, "/api/events/1/book", model.BookRequest{TicketType: "early-bird", Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/events/3/book", model.BookRequest{Quantity: 10})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, srv, http.MethodPost, "/api/events/3/book", model.BookRequest{Quantity: 10})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, srv, http.MethodPost, "/api/events/3/book", model.BookRequest{Quantity: 10})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, srv, http.MethodPost, "/api/events/3/book", model.BookRequest{Quantity: 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/bookings/"+b.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, srv, http.MethodDelete, "/api/bookings/"+b.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/events/1", nil)
	assert.Equal(t, 1250, decode[model.Event](t, rec).AttendeesCount)
}

func TestWishlist(t *testing.T) {
	srv := newServer(t)
	login(t, srv, "attendee")

	rec := do(t, srv, http.MethodPost, "/api/wishlist/2/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"saved":true}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/wishlist", nil)
	items := decode[[]model.WishlistItem](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ID)

	rec = do(t, srv, http.MethodPost, "/api/wishlist/2/toggle", nil)
	assert.JSONEq(t, `{"saved":false}`, rec.Body.String())
}

func TestOrganizerFlow(t *testing.T) {
	srv := newServer(t)
	login(t, srv, "attendee")

	payload := map[string]any{
		"title":         "Jazz Brunch",
		"category":      "Music",
		"date":          "2024-09-01",
		"time":          "11:00",
		"location":      "Riverside Hall",
		"price":         30,
		"max_attendees": 40,
		"status":        "sold-out",
		"earnings":      9999,
	}
	rec := do(t, srv, http.MethodPost, "/api/events", payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	login(t, srv, "organizer")

	rec = do(t, srv, http.MethodPost, "/api/events", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Event](t, rec)
	assert.Equal(t, model.EventActive, created.Status)
	assert.Zero(t, created.Earnings)
	assert.Equal(t, "org1", created.OrganizerID)

	rec = do(t, srv, http.MethodPatch, "/api/events/"+created.ID, `{"price":35}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 35.0, decode[model.Event](t, rec).Price)

	rec = do(t, srv, http.MethodPatch, "/api/events/2", `{"price":1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/organizer/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[model.OrganizerStats](t, rec)
	assert.Equal(t, 2, stats.TotalEvents)
	assert.Equal(t, 2, stats.ActiveEvents)

	rec = do(t, srv, http.MethodGet, "/api/events/1/bookings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = do(t, srv, http.MethodDelete, "/api/events/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, srv, http.MethodGet, "/api/events/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestState(t *testing.T) {
	srv := newServer(t)
	rec := do(t, srv, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	snap := decode[model.StateSnapshot](t, rec)
	assert.Nil(t, snap.User)
	assert.Len(t, snap.Events, 4)
	assert.False(t, snap.Loading)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t)
	do(t, srv, http.MethodGet, "/api/events/1", nil)

	rec := do(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `eventhub_http_requests_total{method="GET",route="/api/events/{id}",status="200"} 1`)
}
