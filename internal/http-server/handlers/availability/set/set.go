package set

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

type AvailabilitySetter interface {
	SetAvailability(ctx context.Context, professionalID string, req *api.AvailabilityRequest) (*api.AvailabilityResponse, error)
}

type Response struct {
	response.Response
	Availability api.AvailabilityResponse `json:"availability,omitzero"`
}

func New(log *slog.Logger, setter AvailabilitySetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.set.New"

		log := handlers.Logger(log, op, r)

		professionalID := chi.URLParam(r, "id")
		if professionalID == "" {
			handlers.MissingParam(log, w, r, "id")
			return
		}

		var req api.AvailabilityRequest
		if !handlers.Decode(log, w, r, &req) {
			return
		}

		window, err := setter.SetAvailability(r.Context(), professionalID, &req)
		if err != nil {
			handlers.WriteError(log, w, r, err, "failed to set availability")
			return
		}

		log.Info("availability set",
			slog.String("professional_id", professionalID),
			slog.String("status", window.Status),
		)
		render.JSON(w, r, Response{Availability: *window})
	}
}
