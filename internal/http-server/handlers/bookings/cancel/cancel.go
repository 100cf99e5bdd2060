package cancel

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"booking-service/api"
	"booking-service/internal/http-server/handlers"
	"booking-service/pkg/response"
)

type BookingCanceller interface {
	CancelBooking(ctx context.Context, bookingID string, req *api.CancelBookingRequest) (*api.CancelBookingResponse, error)
}

type Response struct {
	response.Response
	api.CancelBookingResponse
}

func New(log *slog.Logger, canceller BookingCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.cancel.New"

		log := handlers.Logger(log, op, r)

		id := chi.URLParam(r, "id")
		if id == "" {
			handlers.MissingParam(log, w, r, "id")
			return
		}

		var req api.CancelBookingRequest
		if !handlers.Decode(log, w, r, &req) {
			return
		}

		res, err := canceller.CancelBooking(r.Context(), id, &req)
		if err != nil {
			handlers.WriteError(log, w, r, err, "failed to cancel booking")
			return
		}

		log.Info("booking cancelled", slog.String("booking_id", id), slog.Bool("refunded", res.Refunded))
		render.JSON(w, r, Response{CancelBookingResponse: *res})
	}
}
