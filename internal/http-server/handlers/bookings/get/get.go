package get

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

type BookingGetter interface {
	GetBooking(ctx context.Context, id string) (*api.BookingResponse, error)
}

type Response struct {
	response.Response
	Booking api.BookingResponse `json:"booking,omitzero"`
}

func New(log *slog.Logger, getter BookingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.get.New"

		log := handlers.Logger(log, op, r)

		id := chi.URLParam(r, "id")
		if id == "" {
			handlers.MissingParam(log, w, r, "id")
			return
		}

		booking, err := getter.GetBooking(r.Context(), id)
		if err != nil {
			handlers.WriteError(log, w, r, err, "failed to get booking")
			return
		}

		render.JSON(w, r, Response{Booking: *booking})
	}
}
