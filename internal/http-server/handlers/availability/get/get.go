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

type AvailabilityGetter interface {
	GetAvailability(ctx context.Context, professionalID string) (*api.AvailabilityResponse, error)
}

type Response struct {
	response.Response
	Availability api.AvailabilityResponse `json:"availability,omitzero"`
}

func New(log *slog.Logger, getter AvailabilityGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.get.New"

		log := handlers.Logger(log, op, r)

		professionalID := chi.URLParam(r, "id")
		if professionalID == "" {
			handlers.MissingParam(log, w, r, "id")
			return
		}

		window, err := getter.GetAvailability(r.Context(), professionalID)
		if err != nil {
			handlers.WriteError(log, w, r, err, "failed to get availability")
			return
		}

		render.JSON(w, r, Response{Availability: *window})
	}
}
