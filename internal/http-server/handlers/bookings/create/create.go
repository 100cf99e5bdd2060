package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"booking-service/api"
	"booking-service/internal/http-server/handlers"
	"booking-service/pkg/response"
)

type BookingCreator interface {
	CreateBooking(ctx context.Context, req *api.BookingRequest) (*api.BookingResponse, error)
}

type Request struct {
	api.BookingRequest
}

type Response struct {
	response.Response
	Booking api.BookingResponse `json:"booking,omitzero"`
}

func New(log *slog.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.create.New"

		log := handlers.Logger(log, op, r)

		var req Request
		if !handlers.Decode(log, w, r, &req) {
			return
		}

		log.Debug("request body decoded",
			slog.String("professional_id", req.ProfessionalID),
			slog.String("client_id", req.ClientID),
			slog.String("start_time", req.StartTime),
		)

		booking, err := creator.CreateBooking(r.Context(), &req.BookingRequest)
		if err != nil {
			handlers.WriteError(log, w, r, err, "failed to create booking")
			return
		}

		log.Info("booking created", slog.String("booking_id", booking.ID))

		render.Status(r, http.StatusCreated)
		responseOK(w, r, booking)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, booking *api.BookingResponse) {
	render.JSON(w, r, Response{
		Booking: *booking,
	})
}
