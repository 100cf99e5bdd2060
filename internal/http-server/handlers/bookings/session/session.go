package session

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

type TokenIssuer interface {
	IssueSessionToken(ctx context.Context, bookingID string, req *api.SessionRequest) (*api.SessionResponse, error)
}

type Response struct {
	response.Response
	api.SessionResponse
}

func New(log *slog.Logger, issuer TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.session.New"

		log := handlers.Logger(log, op, r)

		id := chi.URLParam(r, "id")
		if id == "" {
			handlers.MissingParam(log, w, r, "id")
			return
		}

		var req api.SessionRequest
		if !handlers.Decode(log, w, r, &req) {
			return
		}

		session, err := issuer.IssueSessionToken(r.Context(), id, &req)
		if err != nil {
			handlers.WriteError(log, w, r, err, "failed to issue session token")
			return
		}

		log.Info("session token issued", slog.String("booking_id", id), slog.String("role", session.Role))
		render.JSON(w, r, Response{SessionResponse: *session})
	}
}
