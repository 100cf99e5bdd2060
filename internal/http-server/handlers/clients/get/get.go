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

type ClientGetter interface {
	GetClient(ctx context.Context, id string) (*api.ClientResponse, error)
}

type Response struct {
	response.Response
	Client api.ClientResponse `json:"client,omitzero"`
}

func New(log *slog.Logger, getter ClientGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.clients.get.New"

		log := handlers.Logger(log, op, r)

		id := chi.URLParam(r, "id")
		if id == "" {
			handlers.MissingParam(log, w, r, "id")
			return
		}

		client, err := getter.GetClient(r.Context(), id)
		if err != nil {
			handlers.WriteError(log, w, r, err, "failed to get client")
			return
		}

		render.JSON(w, r, Response{Client: *client})
	}
}
