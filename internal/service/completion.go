package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"booking-service/internal/models"
	"booking-service/pkg/response"
)

// CompleteElapsed marks every SCHEDULED booking whose end has passed as
// COMPLETED and returns how many changed.
func (s *Service) CompleteElapsed(ctx context.Context) (int64, error) {
	const op = "service.CompleteElapsed"

	n, err := s.store.CompleteElapsedBookings(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if n > 0 {
		s.log.Info("bookings completed", slog.Int64("count", n))
	}
	s.metrics.ObserveCompletions("sweep", n)

	return n, nil
}

// CompleteBooking marks one booking COMPLETED. done is false when the booking
// already left SCHEDULED; a booking that has not ended yet yields ErrTooEarly.
func (s *Service) CompleteBooking(ctx context.Context, bookingID string) (done bool, err error) {
	const op = "service.CompleteBooking"

	done, err = s.store.CompleteBooking(ctx, bookingID, s.now())
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if done {
		s.metrics.ObserveCompletions("task", 1)
		return true, nil
	}

	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if b.Status == models.BookingScheduled {
		return false, fmt.Errorf("%s: ends at %s: %w", op, b.EndTime.Format(time.RFC3339), response.ErrTooEarly)
	}

	return false, nil
}
