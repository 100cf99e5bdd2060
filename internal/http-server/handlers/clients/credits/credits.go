package credits

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

type CreditTopper interface {
	TopUpCredits(ctx context.Context, clientID string, req *api.CreditTopUpRequest) (*api.CreditTopUpResponse, error)
}

type Response struct {
	response.Response
	api.CreditTopUpResponse
}

func New(log *slog.Logger, topper CreditTopper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.clients.credits.New"

		log := handlers.Logger(log, op, r)

		clientID := chi.URLParam(r, "id")
		if clientID == "" {
			handlers.MissingParam(log, w, r, "id")
			return
		}

		var req api.CreditTopUpRequest
		if !handlers.Decode(log, w, r, &req) {
			return
		}

		res, err := topper.TopUpCredits(r.Context(), clientID, &req)
		if err != nil {
			handlers.WriteError(log, w, r, err, "failed to top up credits")
			return
		}

		if res.Applied {
			render.Status(r, http.StatusCreated)
		}
		render.JSON(w, r, Response{CreditTopUpResponse: *res})
	}
}
