package delete

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"booking-service/internal/http-server/handlers"
)

type AvailabilityDeleter interface {
	DeleteAvailability(ctx context.Context, professionalID string) error
}

func New(log *slog.Logger, deleter AvailabilityDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.delete.New"

		log := handlers.Logger(log, op, r)

		professionalID := chi.URLParam(r, "id")
		if professionalID == "" {
			handlers.MissingParam(log, w, r, "id")
			return
		}

		if err := deleter.DeleteAvailability(r.Context(), professionalID); err != nil {
			handlers.WriteError(log, w, r, err, "failed to delete availability")
			return
		}

		log.Info("availability deleted", slog.String("professional_id", professionalID))
		render.NoContent(w, r)
	}
}
