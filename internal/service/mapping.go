package service

import (
	"fmt"

	"github.com/google/uuid"

	"booking-service/api"
	"booking-service/internal/models"
	"booking-service/internal/schedule"
	"booking-service/pkg/response"
)

// parseID validates id and returns it in the canonical lowercase form the
// store keeps, so later comparisons can be done on plain strings.
func parseID(field, id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%s %q: %w", field, id, response.ErrInvalidID)
	}
	return u.String(), nil
}

func toBookingResponse(b *models.Booking) *api.BookingResponse {
	return &api.BookingResponse{
		ID:             b.ID,
		ProfessionalID: b.ProfessionalID,
		ClientID:       b.ClientID,
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		Status:         string(b.Status),
		SessionID:      b.SessionID,
		Name:           b.ClientName,
		Phone:          b.ClientPhone,
		Age:            b.ClientAge,
		Gender:         b.ClientGender,
		Note:           b.Note,
		CreatedAt:      b.CreatedAt,
	}
}

func toTimeBlockResponse(b *models.TimeBlock) *api.TimeBlockResponse {
	return &api.TimeBlockResponse{
		ID:             b.ID,
		ProfessionalID: b.ProfessionalID,
		Start:          b.Start,
		End:            b.End,
		Reason:         b.Reason,
		Type:           string(b.Type),
	}
}

func toAvailabilityResponse(w *models.AvailabilityWindow) *api.AvailabilityResponse {
	return &api.AvailabilityResponse{
		ProfessionalID: w.ProfessionalID,
		StartTime:      schedule.FormatClock(w.DailyStart),
		EndTime:        schedule.FormatClock(w.DailyEnd),
		Status:         string(w.Status),
		UpdatedAt:      w.UpdatedAt,
	}
}

func toDaysResponse(days []schedule.Day) []api.DayResponse {
	out := make([]api.DayResponse, 0, len(days))
	for _, d := range days {
		slots := make([]api.SlotResponse, 0, len(d.Slots))
		for _, s := range d.Slots {
			slots = append(slots, api.SlotResponse{Start: s.Start, End: s.End, Label: s.Label})
		}
		out = append(out, api.DayResponse{Date: d.Date, Label: d.Label, Slots: slots})
	}
	return out
}
