package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"booking-service/api"
	"booking-service/internal/models"
	"booking-service/internal/schedule"
	"booking-service/pkg/response"
)

const (
	msgNoWindow       = "professional has not set availability"
	msgWindowInactive = "professional is currently unavailable"
)

// GetAvailableSlots lists the bookable slots of a verified professional for
// the configured horizon, starting today.
func (s *Service) GetAvailableSlots(ctx context.Context, professionalID string) (resp *api.SlotsResponse, err error) {
	const op = "service.GetAvailableSlots"

	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("professional.id", professionalID))

	started := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			span.RecordError(err)
		}
		s.metrics.ObserveSlotQuery(result, time.Since(started).Seconds())
	}()

	professionalID, err = parseID("professional_id", professionalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	prof, err := s.store.GetProfessional(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if prof.Status != models.ProfessionalVerified {
		return nil, fmt.Errorf("%s: %w", op, response.ErrProfessionalUnverified)
	}

	resp = &api.SlotsResponse{ProfessionalID: professionalID, Days: []api.DayResponse{}}

	window, err := s.store.GetAvailabilityWindow(ctx, professionalID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			resp.Message = msgNoWindow
			return resp, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if window.Status != models.WindowActive {
		resp.Message = msgWindowInactive
		return resp, nil
	}

	now := s.now()
	from, to := schedule.Horizon(now, s.params.HorizonDays, s.params.Location)

	busy, err := s.busyIntervals(ctx, professionalID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	days := schedule.Generate(*window, busy, schedule.Params{
		Now:      now,
		Days:     s.params.HorizonDays,
		Duration: s.params.SlotDuration,
		Location: s.params.Location,
	})
	resp.Days = toDaysResponse(days)

	return resp, nil
}

// busyIntervals loads scheduled bookings and time blocks intersecting
// [from, to) with one query each.
func (s *Service) busyIntervals(ctx context.Context, professionalID string, from, to time.Time) ([]schedule.Interval, error) {
	bookings, err := s.store.ListScheduledBookings(ctx, professionalID, from, to)
	if err != nil {
		return nil, err
	}

	blocks, err := s.store.ListTimeBlocks(ctx, professionalID, &from, &to)
	if err != nil {
		return nil, err
	}

	busy := make([]schedule.Interval, 0, len(bookings)+len(blocks))
	for _, b := range bookings {
		busy = append(busy, schedule.Interval{Start: b.StartTime, End: b.EndTime})
	}
	for _, b := range blocks {
		busy = append(busy, schedule.Interval{Start: b.Start, End: b.End})
	}

	return busy, nil
}
