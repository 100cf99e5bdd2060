package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"booking-service/api"
	"booking-service/internal/http-server/handlers"
	"booking-service/pkg/response"
)

type BookingLister interface {
	ListBookings(ctx context.Context, professionalID, clientID, status *string) ([]*api.BookingResponse, error)
}

type Response struct {
	response.Response
	Bookings []*api.BookingResponse `json:"bookings"`
}

func New(log *slog.Logger, lister BookingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.list.New"

		log := handlers.Logger(log, op, r)

		q := r.URL.Query()
		bookings, err := lister.ListBookings(r.Context(),
			optional(q.Get("professional_id")),
			optional(q.Get("client_id")),
			optional(q.Get("status")),
		)
		if err != nil {
			handlers.WriteError(log, w, r, err, "failed to list bookings")
			return
		}

		render.JSON(w, r, Response{Bookings: bookings})
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
