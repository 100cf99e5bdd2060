package storage

import (
	"context"
	"time"

	"booking-service/internal/models"
)

// Tx is the unit of work the booking engine commits through. Implementations
// must keep every call between BeginTx and Commit atomic, and serialize
// concurrent units touching the same professional.
type Tx interface {
	// LockProfessional takes a write lock scoped to the professional for the
	// rest of the unit.
	LockProfessional(ctx context.Context, professionalID string) error
	// HasConflict reports whether [start, end) overlaps a scheduled booking or
	// a time block of the professional.
	HasConflict(ctx context.Context, professionalID string, start, end time.Time) (bool, error)
	// DebitCredit takes one credit, failing with ErrInsufficientCredits at zero.
	DebitCredit(ctx context.Context, clientID string) error
	RefundCredit(ctx context.Context, clientID string) error
	// InsertBooking fails with ErrSlotConflict if the store rejects an overlap.
	InsertBooking(ctx context.Context, booking *models.Booking) error
	GetBookingForUpdate(ctx context.Context, bookingID string) (*models.Booking, error)
	SetBookingStatus(ctx context.Context, bookingID string, from, to models.BookingStatus) error

	Commit() error
	Rollback() error
}
