// Package handlers holds what every HTTP handler shares: decoding request
// bodies and turning service errors into JSON error responses.
package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"booking-service/pkg/response"
	"booking-service/pkg/sl"
)

type errorMapping struct {
	err    error
	status int
	code   response.ErrCode
}

// Order matters: the first sentinel found in the chain wins.
var errorMappings = []errorMapping{
	{response.ErrMissingFields, http.StatusBadRequest, response.MISSING_FIELDS},
	{response.ErrInvalidID, http.StatusBadRequest, response.VALIDATION_FAILED},
	{response.ErrInvalidField, http.StatusBadRequest, response.VALIDATION_FAILED},
	{response.ErrInvalidTimeRange, http.StatusBadRequest, response.VALIDATION_FAILED},
	{response.ErrBadRequest, http.StatusBadRequest, response.BAD_REQUEST},
	{response.ErrSlotInPast, http.StatusUnprocessableEntity, response.SLOT_IN_PAST},
	{response.ErrOutsideAvailability, http.StatusUnprocessableEntity, response.OUTSIDE_AVAILABILITY},
	{response.ErrProfessionalUnverified, http.StatusUnprocessableEntity, response.PROFESSIONAL_UNVERIFIED},
	{response.ErrProfessionalNotFound, http.StatusNotFound, response.PROFESSIONAL_NOT_FOUND},
	{response.ErrClientNotFound, http.StatusNotFound, response.CLIENT_NOT_FOUND},
	{response.ErrNotFound, http.StatusNotFound, response.NOT_FOUND},
	{response.ErrInsufficientCredits, http.StatusPaymentRequired, response.INSUFFICIENT_CREDITS},
	{response.ErrSlotConflict, http.StatusConflict, response.SLOT_CONFLICT},
	{response.ErrBookingNotScheduled, http.StatusConflict, response.BOOKING_NOT_SCHEDULED},
	{response.ErrConflict, http.StatusConflict, response.CONFLICT},
	{response.ErrForbidden, http.StatusForbidden, response.FORBIDDEN},
	{response.ErrTooEarly, http.StatusTooEarly, response.TOO_EARLY},
	{response.ErrVideoSessionFailed, http.StatusBadGateway, response.VIDEO_SESSION_FAILED},
}

// opPrefix matches the "pkg.Func: " prefixes errors collect on the way up.
var opPrefix = regexp.MustCompile(`^([A-Za-z_]+\.)+[A-Za-z_]+: `)

// Logger scopes log to one handler invocation.
func Logger(log *slog.Logger, op string, r *http.Request) *slog.Logger {
	return log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Decode reads a JSON body into v, answering 400 itself on failure.
func Decode(log *slog.Logger, w http.ResponseWriter, r *http.Request, v any) bool {
	err := render.DecodeJSON(r.Body, v)
	if errors.Is(err, io.EOF) {
		log.Error("request body is empty")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "empty request"))
		return false
	}
	if err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
		return false
	}
	return true
}

// WriteError answers with the status and code of the first known sentinel in
// err. Anything unknown is a 500 carrying fallback and no detail.
func WriteError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error, fallback string) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}

		msg := clientMessage(err)
		if m.status >= http.StatusInternalServerError {
			log.Error(fallback, sl.Err(err))
			msg = m.err.Error()
		} else {
			log.Info("request rejected", slog.String("code", string(m.code)), sl.Err(err))
		}

		render.Status(r, m.status)
		render.JSON(w, r, response.Error(string(m.code), msg))
		return
	}

	log.Error(fallback, sl.Err(err))
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), fallback))
}

func clientMessage(err error) string {
	msg := err.Error()
	for {
		stripped := opPrefix.ReplaceAllString(msg, "")
		if stripped == msg {
			return msg
		}
		msg = stripped
	}
}

// MissingParam answers 400 for an empty URL parameter.
func MissingParam(log *slog.Logger, w http.ResponseWriter, r *http.Request, name string) {
	log.Error(name + " is empty")
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, response.Error(string(response.BAD_REQUEST), name+" is required"))
}
