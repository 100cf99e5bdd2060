package service

import (
	"context"
	"fmt"
	"strings"

	"booking-service/api"
	"booking-service/internal/models"
	"booking-service/internal/schedule"
	"booking-service/pkg/response"
)

// Availability windows

func (s *Service) SetAvailability(ctx context.Context, professionalID string, req *api.AvailabilityRequest) (*api.AvailabilityResponse, error) {
	const op = "service.SetAvailability"

	professionalID, err := parseID("professional_id", professionalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var missing []string
	if req.StartTime == "" {
		missing = append(missing, "start_time")
	}
	if req.EndTime == "" {
		missing = append(missing, "end_time")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", op, response.ErrMissingFields, strings.Join(missing, ", "))
	}

	start, err := schedule.ParseClock(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%s: start_time: %w", op, response.ErrInvalidField)
	}
	end, err := schedule.ParseClock(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%s: end_time: %w", op, response.ErrInvalidField)
	}
	if start >= end {
		return nil, fmt.Errorf("%s: %w", op, response.ErrInvalidTimeRange)
	}

	status := models.WindowActive
	if req.Status != "" {
		status = models.WindowStatus(strings.ToUpper(req.Status))
		if status != models.WindowActive && status != models.WindowInactive {
			return nil, fmt.Errorf("%s: status %q: %w", op, req.Status, response.ErrInvalidField)
		}
	}

	w := &models.AvailabilityWindow{
		ProfessionalID: professionalID,
		DailyStart:     start,
		DailyEnd:       end,
		Status:         status,
	}

	if err := s.store.UpsertAvailabilityWindow(ctx, w); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAvailability(ctx, professionalID)
}

func (s *Service) GetAvailability(ctx context.Context, professionalID string) (*api.AvailabilityResponse, error) {
	const op = "service.GetAvailability"

	professionalID, err := parseID("professional_id", professionalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	w, err := s.store.GetAvailabilityWindow(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toAvailabilityResponse(w), nil
}

func (s *Service) DeleteAvailability(ctx context.Context, professionalID string) error {
	const op = "service.DeleteAvailability"

	professionalID, err := parseID("professional_id", professionalID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.DeleteAvailabilityWindow(ctx, professionalID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
