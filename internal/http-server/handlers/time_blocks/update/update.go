package update

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

type TimeBlockUpdater interface {
	UpdateTimeBlock(ctx context.Context, id string, req *api.TimeBlockRequest) (*api.TimeBlockResponse, error)
}

type Response struct {
	response.Response
	TimeBlock api.TimeBlockResponse `json:"time_block,omitzero"`
}

func New(log *slog.Logger, updater TimeBlockUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.time_blocks.update.New"

		log := handlers.Logger(log, op, r)

		id := chi.URLParam(r, "id")
		if id == "" {
			handlers.MissingParam(log, w, r, "id")
			return
		}

		var req api.TimeBlockRequest
		if !handlers.Decode(log, w, r, &req) {
			return
		}

		block, err := updater.UpdateTimeBlock(r.Context(), id, &req)
		if err != nil {
			handlers.WriteError(log, w, r, err, "failed to update time block")
			return
		}

		log.Info("time block updated", slog.String("time_block_id", id))
		render.JSON(w, r, Response{TimeBlock: *block})
	}
}
