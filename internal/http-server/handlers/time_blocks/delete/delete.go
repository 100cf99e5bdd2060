package delete

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"booking-service/internal/http-server/handlers"
)

type TimeBlockDeleter interface {
	DeleteTimeBlock(ctx context.Context, id string) error
}

func New(log *slog.Logger, deleter TimeBlockDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.time_blocks.delete.New"

		log := handlers.Logger(log, op, r)

		id := chi.URLParam(r, "id")
		if id == "" {
			handlers.MissingParam(log, w, r, "id")
			return
		}

		if err := deleter.DeleteTimeBlock(r.Context(), id); err != nil {
			handlers.WriteError(log, w, r, err, "failed to delete time block")
			return
		}

		log.Info("time block deleted", slog.String("time_block_id", id))
		render.NoContent(w, r)
	}
}
