package create

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-service/api"
	"booking-service/pkg/response"
)

type creatorFunc func(ctx context.Context, req *api.BookingRequest) (*api.BookingResponse, error)

func (f creatorFunc) CreateBooking(ctx context.Context, req *api.BookingRequest) (*api.BookingResponse, error) {
	return f(ctx, req)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateBookingCreated(t *testing.T) {
	h := New(discardLogger(), creatorFunc(func(_ context.Context, req *api.BookingRequest) (*api.BookingResponse, error) {
		return &api.BookingResponse{ID: "b1", ProfessionalID: req.ProfessionalID, Status: "SCHEDULED", SessionID: "room-1"}, nil
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"professional_id":"p1","client_id":"c1"}`))
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "b1", body.Booking.ID)
	assert.Equal(t, "p1", body.Booking.ProfessionalID)
	assert.Empty(t, body.Code)
}

func TestCreateBookingErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   response.ErrCode
	}{
		{"conflict", fmt.Errorf("service.CreateBooking: %w", response.ErrSlotConflict), http.StatusConflict, response.SLOT_CONFLICT},
		{"credits", fmt.Errorf("service.CreateBooking: %w", response.ErrInsufficientCredits), http.StatusPaymentRequired, response.INSUFFICIENT_CREDITS},
		{"missing", fmt.Errorf("service.CreateBooking: %w: phone", response.ErrMissingFields), http.StatusBadRequest, response.MISSING_FIELDS},
		{"client", fmt.Errorf("service.CreateBooking: %w", response.ErrClientNotFound), http.StatusNotFound, response.CLIENT_NOT_FOUND},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(discardLogger(), creatorFunc(func(context.Context, *api.BookingRequest) (*api.BookingResponse, error) {
				return nil, tt.err
			}))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
			h.ServeHTTP(w, r)

			assert.Equal(t, tt.status, w.Code)

			var body response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, string(tt.code), body.Code)
		})
	}
}

func TestCreateBookingMalformedBody(t *testing.T) {
	called := false
	h := New(discardLogger(), creatorFunc(func(context.Context, *api.BookingRequest) (*api.BookingResponse, error) {
		called = true
		return nil, nil
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"age":"old"`))
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}
