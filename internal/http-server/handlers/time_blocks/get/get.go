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

type TimeBlockGetter interface {
	GetTimeBlock(ctx context.Context, id string) (*api.TimeBlockResponse, error)
}

type Response struct {
	response.Response
	TimeBlock api.TimeBlockResponse `json:"time_block,omitzero"`
}

func New(log *slog.Logger, getter TimeBlockGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.time_blocks.get.New"

		log := handlers.Logger(log, op, r)

		id := chi.URLParam(r, "id")
		if id == "" {
			handlers.MissingParam(log, w, r, "id")
			return
		}

		block, err := getter.GetTimeBlock(r.Context(), id)
		if err != nil {
			handlers.WriteError(log, w, r, err, "failed to get time block")
			return
		}

		render.JSON(w, r, Response{TimeBlock: *block})
	}
}
