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

type TimeBlockCreator interface {
	CreateTimeBlock(ctx context.Context, req *api.TimeBlockRequest) (*api.TimeBlockResponse, error)
}

type Response struct {
	response.Response
	TimeBlock api.TimeBlockResponse `json:"time_block,omitzero"`
}

func New(log *slog.Logger, creator TimeBlockCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.time_blocks.create.New"

		log := handlers.Logger(log, op, r)

		var req api.TimeBlockRequest
		if !handlers.Decode(log, w, r, &req) {
			return
		}

		block, err := creator.CreateTimeBlock(r.Context(), &req)
		if err != nil {
			handlers.WriteError(log, w, r, err, "failed to create time block")
			return
		}

		log.Info("time block created", slog.String("time_block_id", block.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{TimeBlock: *block})
	}
}
