package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-service/api"
	"booking-service/pkg/response"
)

func TestSetAvailabilityUpsertsWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.SetAvailability(ctx, profID, &api.AvailabilityRequest{StartTime: "13:00", EndTime: "17:30"})
	require.NoError(t, err)
	assert.Equal(t, "13:00", got.StartTime)
	assert.Equal(t, "17:30", got.EndTime)
	assert.Equal(t, "ACTIVE", got.Status)

	got, err = f.svc.SetAvailability(ctx, profID, &api.AvailabilityRequest{StartTime: "13:00", EndTime: "17:30", Status: "inactive"})
	require.NoError(t, err)
	assert.Equal(t, "INACTIVE", got.Status)

	slots, err := f.svc.GetAvailableSlots(ctx, profID)
	require.NoError(t, err)
	assert.Empty(t, slots.Days)
}

func TestSetAvailabilityValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		profID  string
		req     api.AvailabilityRequest
		wantErr error
	}{
		{"missing end", profID, api.AvailabilityRequest{StartTime: "09:00"}, response.ErrMissingFields},
		{"bad clock", profID, api.AvailabilityRequest{StartTime: "9am", EndTime: "10:00"}, response.ErrInvalidField},
		{"reversed", profID, api.AvailabilityRequest{StartTime: "10:00", EndTime: "09:00"}, response.ErrInvalidTimeRange},
		{"equal", profID, api.AvailabilityRequest{StartTime: "10:00", EndTime: "10:00"}, response.ErrInvalidTimeRange},
		{"bad status", profID, api.AvailabilityRequest{StartTime: "09:00", EndTime: "10:00", Status: "PAUSED"}, response.ErrInvalidField},
		{"bad id", "nope", api.AvailabilityRequest{StartTime: "09:00", EndTime: "10:00"}, response.ErrInvalidID},
		{"unknown professional", strangerID, api.AvailabilityRequest{StartTime: "09:00", EndTime: "10:00"}, response.ErrProfessionalNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.SetAvailability(ctx, tt.profID, &req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDeleteAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.DeleteAvailability(ctx, profID))

	_, err := f.svc.GetAvailability(ctx, profID)
	assert.ErrorIs(t, err, response.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteAvailability(ctx, profID), response.ErrNotFound)
}

func TestTimeBlockLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	created, err := f.svc.CreateTimeBlock(ctx, &api.TimeBlockRequest{
		ProfessionalID: profID,
		Start:          start,
		End:            start.Add(time.Hour),
		Reason:         " dentist ",
	})
	require.NoError(t, err)
	assert.Equal(t, "OTHER", created.Type)
	assert.Equal(t, "dentist", created.Reason)

	updated, err := f.svc.UpdateTimeBlock(ctx, created.ID, &api.TimeBlockRequest{
		Start: start,
		End:   start.Add(30 * time.Minute),
		Type:  "sick",
	})
	require.NoError(t, err)
	assert.Equal(t, "SICK", updated.Type)
	assert.Equal(t, profID, updated.ProfessionalID)

	_, err = f.svc.UpdateTimeBlock(ctx, created.ID, &api.TimeBlockRequest{
		ProfessionalID: pendingID,
		Start:          start,
		End:            start.Add(time.Hour),
	})
	assert.ErrorIs(t, err, response.ErrInvalidField)

	from := start.Add(-time.Hour)
	to := start.Add(2 * time.Hour)
	list, err := f.svc.ListTimeBlocks(ctx, profID, &from, &to)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	_, err = f.svc.ListTimeBlocks(ctx, profID, &to, &from)
	assert.ErrorIs(t, err, response.ErrInvalidTimeRange)

	require.NoError(t, f.svc.DeleteTimeBlock(ctx, created.ID))
	_, err = f.svc.GetTimeBlock(ctx, created.ID)
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestCreateTimeBlockValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

	_, err := f.svc.CreateTimeBlock(ctx, &api.TimeBlockRequest{ProfessionalID: profID})
	assert.ErrorIs(t, err, response.ErrMissingFields)

	_, err = f.svc.CreateTimeBlock(ctx, &api.TimeBlockRequest{ProfessionalID: profID, Start: start, End: start})
	assert.ErrorIs(t, err, response.ErrInvalidTimeRange)

	_, err = f.svc.CreateTimeBlock(ctx, &api.TimeBlockRequest{ProfessionalID: profID, Start: start, End: start.Add(time.Hour), Type: "holiday"})
	assert.ErrorIs(t, err, response.ErrInvalidField)

	_, err = f.svc.CreateTimeBlock(ctx, &api.TimeBlockRequest{ProfessionalID: strangerID, Start: start, End: start.Add(time.Hour)})
	assert.ErrorIs(t, err, response.ErrProfessionalNotFound)
}

func TestGetClient(t *testing.T) {
	f := newFixture(t)

	c, err := f.svc.GetClient(context.Background(), clientID)
	require.NoError(t, err)
	assert.Equal(t, 2, c.CreditBalance)

	_, err = f.svc.GetClient(context.Background(), strangerID)
	assert.ErrorIs(t, err, response.ErrClientNotFound)
}

func TestTopUpCreditsIsIdempotentPerPaymentRef(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.TopUpCredits(ctx, clientID, &api.CreditTopUpRequest{Amount: 5, PaymentRef: "pay_1"})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 7, res.CreditBalance)

	res, err = f.svc.TopUpCredits(ctx, clientID, &api.CreditTopUpRequest{Amount: 5, PaymentRef: "pay_1"})
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, 7, res.CreditBalance)

	_, err = f.svc.TopUpCredits(ctx, otherID, &api.CreditTopUpRequest{Amount: 5, PaymentRef: "pay_1"})
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestTopUpCreditsValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.TopUpCredits(ctx, clientID, &api.CreditTopUpRequest{Amount: 5})
	assert.ErrorIs(t, err, response.ErrMissingFields)

	_, err = f.svc.TopUpCredits(ctx, clientID, &api.CreditTopUpRequest{Amount: 0, PaymentRef: "pay_2"})
	assert.ErrorIs(t, err, response.ErrInvalidField)

	assert.Equal(t, 2, f.store.balance(clientID))
}

func TestSetAvailabilityKeepsSeconds(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.SetAvailability(context.Background(), profID, &api.AvailabilityRequest{StartTime: "09:00:30", EndTime: "09:00:45"})
	require.NoError(t, err)
	assert.Equal(t, "09:00:30", got.StartTime)
	assert.Equal(t, "09:00:45", got.EndTime)
}
