package list

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"booking-service/api"
	"booking-service/internal/http-server/handlers"
	"booking-service/pkg/response"
)

type TimeBlockLister interface {
	ListTimeBlocks(ctx context.Context, professionalID string, from, to *time.Time) ([]*api.TimeBlockResponse, error)
}

type Response struct {
	response.Response
	TimeBlocks []*api.TimeBlockResponse `json:"time_blocks"`
}

func New(log *slog.Logger, lister TimeBlockLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.time_blocks.list.New"

		log := handlers.Logger(log, op, r)

		professionalID := chi.URLParam(r, "id")
		if professionalID == "" {
			handlers.MissingParam(log, w, r, "id")
			return
		}

		from, err := parseBound(r, "from")
		if err != nil {
			handlers.WriteError(log, w, r, err, "invalid from")
			return
		}
		to, err := parseBound(r, "to")
		if err != nil {
			handlers.WriteError(log, w, r, err, "invalid to")
			return
		}

		blocks, err := lister.ListTimeBlocks(r.Context(), professionalID, from, to)
		if err != nil {
			handlers.WriteError(log, w, r, err, "failed to list time blocks")
			return
		}

		render.JSON(w, r, Response{TimeBlocks: blocks})
	}
}

func parseBound(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("%s must be RFC3339: %w", name, response.ErrInvalidField)
	}

	return &t, nil
}
