package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-service/api"
	"booking-service/pkg/response"
)

type issuerFunc func(ctx context.Context, bookingID string, req *api.SessionRequest) (*api.SessionResponse, error)

func (f issuerFunc) IssueSessionToken(ctx context.Context, bookingID string, req *api.SessionRequest) (*api.SessionResponse, error) {
	return f(ctx, bookingID, req)
}

func newRouter(issuer TokenIssuer) http.Handler {
	router := chi.NewRouter()
	router.Post("/bookings/{id}/session", New(slog.New(slog.NewTextHandler(io.Discard, nil)), issuer))
	return router
}

func TestIssueSessionToken(t *testing.T) {
	exp := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)
	router := newRouter(issuerFunc(func(_ context.Context, bookingID string, req *api.SessionRequest) (*api.SessionResponse, error) {
		assert.Equal(t, "b1", bookingID)
		assert.Equal(t, "u1", req.UserID)
		return &api.SessionResponse{Token: "jwt", SessionID: "room-1", Role: "guest", ExpiresAt: exp}, nil
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/bookings/b1/session", strings.NewReader(`{"user_id":"u1"}`))
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "jwt", body.Token)
	assert.Equal(t, "guest", body.Role)
	assert.True(t, body.ExpiresAt.Equal(exp))
}

func TestIssueSessionTokenTooEarly(t *testing.T) {
	router := newRouter(issuerFunc(func(context.Context, string, *api.SessionRequest) (*api.SessionResponse, error) {
		return nil, fmt.Errorf("service.IssueSessionToken: opens at 08:58: %w", response.ErrTooEarly)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/bookings/b1/session", strings.NewReader(`{"user_id":"u1"}`))
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusTooEarly, w.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(response.TOO_EARLY), body.Code)
	assert.Equal(t, "opens at 08:58: session is not open yet", body.Message)
}
