package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"booking-service/api"
	"booking-service/internal/models"
	"booking-service/internal/video"
	"booking-service/pkg/response"
	"booking-service/pkg/sl"
)

// IssueSessionToken grants a participant a token for the booking's video
// session once the join window opens. The token expires at the booking end.
func (s *Service) IssueSessionToken(ctx context.Context, bookingID string, req *api.SessionRequest) (resp *api.SessionResponse, err error) {
	const op = "service.IssueSessionToken"

	defer func() {
		s.metrics.ObserveSession(sessionOutcome(err))
	}()

	if req.UserID == "" {
		return nil, fmt.Errorf("%s: %w: user_id", op, response.ErrMissingFields)
	}
	bookingID, err = parseID("booking_id", bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	userID, err := parseID("user_id", req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var role video.Role
	switch userID {
	case b.ProfessionalID:
		role = video.RoleHost
	case b.ClientID:
		role = video.RoleGuest
	default:
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	if b.Status != models.BookingScheduled {
		return nil, fmt.Errorf("%s: %w", op, response.ErrBookingNotScheduled)
	}

	now := s.now()
	if now.Before(b.StartTime.Add(-s.params.JoinWindow)) {
		return nil, fmt.Errorf("%s: opens at %s: %w", op, b.StartTime.Add(-s.params.JoinWindow).Format("15:04"), response.ErrTooEarly)
	}
	// elapsed but not yet swept
	if !now.Before(b.EndTime) {
		return nil, fmt.Errorf("%s: session ended: %w", op, response.ErrBookingNotScheduled)
	}

	token, err := s.video.IssueToken(b.SessionID, userID, role, b.EndTime, map[string]string{
		"booking_id": b.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleCompletion(ctx, b.ID, b.EndTime); err != nil {
			s.log.Warn("completion task not scheduled, sweep will cover it",
				slog.String("booking_id", b.ID),
				sl.Err(err),
			)
		}
	}

	return &api.SessionResponse{
		Token:     token,
		SessionID: b.SessionID,
		Role:      string(role),
		ExpiresAt: b.EndTime,
	}, nil
}

func sessionOutcome(err error) string {
	switch {
	case err == nil:
		return "issued"
	case errors.Is(err, response.ErrTooEarly):
		return "too_early"
	case errors.Is(err, response.ErrForbidden):
		return "forbidden"
	case errors.Is(err, response.ErrBookingNotScheduled):
		return "not_scheduled"
	default:
		return "error"
	}
}
