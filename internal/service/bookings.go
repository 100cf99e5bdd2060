package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"go.opentelemetry.io/otel/attribute"

	"booking-service/api"
	"booking-service/internal/models"
	"booking-service/internal/schedule"
	"booking-service/pkg/response"
	"booking-service/pkg/sl"
)

const (
	minClientAge = 1
	maxClientAge = 150
)

var genders = map[string]struct{}{
	"male":   {},
	"female": {},
	"other":  {},
}

// CreateBooking books [start_time, end_time) with a professional for a client.
// The overlap re-check, video session, credit debit and insert commit as one
// unit or not at all.
func (s *Service) CreateBooking(ctx context.Context, req *api.BookingRequest) (resp *api.BookingResponse, err error) {
	const op = "service.CreateBooking"

	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		s.metrics.ObserveBooking(bookingOutcome(err))
	}()

	booking, err := s.validateBooking(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	span.SetAttributes(
		attribute.String("professional.id", booking.ProfessionalID),
		attribute.String("client.id", booking.ClientID),
	)

	prof, err := s.store.GetProfessional(ctx, booking.ProfessionalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if prof.Status != models.ProfessionalVerified {
		return nil, fmt.Errorf("%s: %w", op, response.ErrProfessionalUnverified)
	}

	client, err := s.store.GetClient(ctx, booking.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if client.CreditBalance < 1 {
		return nil, fmt.Errorf("%s: %w", op, response.ErrInsufficientCredits)
	}

	window, err := s.store.GetAvailabilityWindow(ctx, booking.ProfessionalID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: no availability window: %w", op, response.ErrOutsideAvailability)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if window.Status != models.WindowActive ||
		!schedule.WithinWindow(booking.StartTime, booking.EndTime, *window, s.params.Location) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrOutsideAvailability)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tx.Rollback()
		if booking.SessionID != "" {
			s.dropSession(ctx, booking.SessionID)
		}
	}()

	if err := tx.LockProfessional(ctx, booking.ProfessionalID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conflict, err := tx.HasConflict(ctx, booking.ProfessionalID, booking.StartTime, booking.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if conflict {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotConflict)
	}

	sessionID, err := s.video.CreateSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, response.ErrVideoSessionFailed, err)
	}
	booking.SessionID = sessionID

	if err := tx.DebitCredit(ctx, booking.ClientID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.InsertBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}
	committed = true

	s.log.Info("booking created",
		slog.String("booking_id", booking.ID),
		slog.String("professional_id", booking.ProfessionalID),
		slog.Time("start_time", booking.StartTime),
	)

	if s.notifier != nil {
		s.notifier.BookingConfirmed(booking, client, prof)
	}

	return toBookingResponse(booking), nil
}

// dropSession closes a room whose booking was rolled back. It outlives a
// cancelled request context; failures are only logged.
func (s *Service) dropSession(ctx context.Context, sessionID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.video.DeleteSession(ctx, sessionID); err != nil {
		s.log.Warn("orphaned video session not deleted",
			slog.String("session_id", sessionID),
			sl.Err(err),
		)
	}
}

func (s *Service) validateBooking(req *api.BookingRequest) (*models.Booking, error) {
	var missing []string
	if req.ProfessionalID == "" {
		missing = append(missing, "professional_id")
	}
	if req.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if req.StartTime == "" {
		missing = append(missing, "start_time")
	}
	if req.EndTime == "" {
		missing = append(missing, "end_time")
	}
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if req.Phone == "" {
		missing = append(missing, "phone")
	}
	if req.Age == 0 {
		missing = append(missing, "age")
	}
	if req.Gender == "" {
		missing = append(missing, "gender")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", response.ErrMissingFields, strings.Join(missing, ", "))
	}

	professionalID, err := parseID("professional_id", req.ProfessionalID)
	if err != nil {
		return nil, err
	}
	clientID, err := parseID("client_id", req.ClientID)
	if err != nil {
		return nil, err
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("start_time: %w", response.ErrInvalidField)
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("end_time: %w", response.ErrInvalidField)
	}
	if !start.Before(end) {
		return nil, response.ErrInvalidTimeRange
	}
	if end.Sub(start) != s.params.SlotDuration {
		return nil, fmt.Errorf("duration must be %s: %w", s.params.SlotDuration, response.ErrInvalidField)
	}
	if start.Before(s.now()) {
		return nil, response.ErrSlotInPast
	}

	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	if req.Age < minClientAge || req.Age > maxClientAge {
		return nil, fmt.Errorf("age must be between %d and %d: %w", minClientAge, maxClientAge, response.ErrInvalidField)
	}

	gender := strings.ToLower(strings.TrimSpace(req.Gender))
	if _, ok := genders[gender]; !ok {
		return nil, fmt.Errorf("gender must be male, female or other: %w", response.ErrInvalidField)
	}

	return &models.Booking{
		ID:             uuid.NewString(),
		ProfessionalID: professionalID,
		ClientID:       clientID,
		StartTime:      start.UTC(),
		EndTime:        end.UTC(),
		Status:         models.BookingScheduled,
		ClientName:     strings.TrimSpace(req.Name),
		ClientPhone:    phone,
		ClientAge:      req.Age,
		ClientGender:   gender,
		Note:           strings.TrimSpace(req.Note),
	}, nil
}

// normalizePhone accepts international numbers only and returns them in E.164.
func normalizePhone(raw string) (string, error) {
	num, err := phonenumbers.Parse(raw, "")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("phone %q: %w", raw, response.ErrInvalidField)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, response.ErrSlotConflict):
		return "slot_conflict"
	case errors.Is(err, response.ErrInsufficientCredits):
		return "insufficient_credits"
	case errors.Is(err, response.ErrVideoSessionFailed):
		return "video_failed"
	case errors.Is(err, response.ErrMissingFields),
		errors.Is(err, response.ErrInvalidField),
		errors.Is(err, response.ErrInvalidID),
		errors.Is(err, response.ErrInvalidTimeRange),
		errors.Is(err, response.ErrSlotInPast),
		errors.Is(err, response.ErrOutsideAvailability):
		return "rejected"
	case errors.Is(err, response.ErrProfessionalNotFound),
		errors.Is(err, response.ErrProfessionalUnverified),
		errors.Is(err, response.ErrClientNotFound):
		return "unknown_party"
	default:
		return "error"
	}
}

func (s *Service) GetBooking(ctx context.Context, id string) (*api.BookingResponse, error) {
	const op = "service.GetBooking"

	id, err := parseID("booking_id", id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toBookingResponse(b), nil
}

func (s *Service) ListBookings(ctx context.Context, professionalID, clientID, status *string) ([]*api.BookingResponse, error) {
	const op = "service.ListBookings"

	if professionalID != nil {
		id, err := parseID("professional_id", *professionalID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		professionalID = &id
	}
	if clientID != nil {
		id, err := parseID("client_id", *clientID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		clientID = &id
	}
	if status != nil {
		switch models.BookingStatus(*status) {
		case models.BookingScheduled, models.BookingCompleted, models.BookingCancelled:
		default:
			return nil, fmt.Errorf("%s: status %q: %w", op, *status, response.ErrInvalidField)
		}
	}

	bookings, err := s.store.ListBookings(ctx, professionalID, clientID, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]*api.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}

	return out, nil
}

// CancelBooking moves a SCHEDULED booking to CANCELLED on behalf of one of its
// participants. The credit is returned when cancelled before the start.
func (s *Service) CancelBooking(ctx context.Context, bookingID string, req *api.CancelBookingRequest) (*api.CancelBookingResponse, error) {
	const op = "service.CancelBooking"

	if req.UserID == "" {
		return nil, fmt.Errorf("%s: %w: user_id", op, response.ErrMissingFields)
	}
	bookingID, err := parseID("booking_id", bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	userID, err := parseID("user_id", req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := tx.GetBookingForUpdate(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if userID != b.ProfessionalID && userID != b.ClientID {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}
	if b.Status != models.BookingScheduled {
		return nil, fmt.Errorf("%s: %w", op, response.ErrBookingNotScheduled)
	}

	if err := tx.SetBookingStatus(ctx, b.ID, models.BookingScheduled, models.BookingCancelled); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refunded := s.now().Before(b.StartTime)
	if refunded {
		if err := tx.RefundCredit(ctx, b.ClientID); err != nil {
			return nil, fmt.Errorf("%s: refund: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}
	committed = true
	b.Status = models.BookingCancelled

	s.log.Info("booking cancelled",
		slog.String("booking_id", b.ID),
		slog.String("by", userID),
		slog.Bool("refunded", refunded),
	)

	if s.notifier != nil {
		client, err := s.store.GetClient(ctx, b.ClientID)
		if err != nil {
			s.log.Warn("cancellation mail skipped", slog.String("booking_id", b.ID), sl.Err(err))
		} else {
			s.notifier.BookingCancelled(b, client, refunded)
		}
	}

	return &api.CancelBookingResponse{Booking: *toBookingResponse(b), Refunded: refunded}, nil
}
