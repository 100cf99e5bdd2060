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

type SlotGetter interface {
	GetAvailableSlots(ctx context.Context, professionalID string) (*api.SlotsResponse, error)
}

type Response struct {
	response.Response
	api.SlotsResponse
}

func New(log *slog.Logger, getter SlotGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.get.New"

		log := handlers.Logger(log, op, r)

		professionalID := chi.URLParam(r, "id")
		if professionalID == "" {
			handlers.MissingParam(log, w, r, "id")
			return
		}

		slots, err := getter.GetAvailableSlots(r.Context(), professionalID)
		if err != nil {
			handlers.WriteError(log, w, r, err, "failed to get slots")
			return
		}

		render.JSON(w, r, Response{SlotsResponse: *slots})
	}
}
