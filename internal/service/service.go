package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"booking-service/internal/metrics"
	"booking-service/internal/models"
	"booking-service/internal/storage"
	"booking-service/internal/video"
)

type Store interface {
	BeginTx(ctx context.Context) (storage.Tx, error)

	// Accounts
	GetProfessional(ctx context.Context, id string) (*models.Professional, error)
	GetClient(ctx context.Context, id string) (*models.Client, error)
	AddCredits(ctx context.Context, clientID string, amount int, paymentRef string) (int, bool, error)

	// Availability windows
	UpsertAvailabilityWindow(ctx context.Context, w *models.AvailabilityWindow) error
	GetAvailabilityWindow(ctx context.Context, professionalID string) (*models.AvailabilityWindow, error)
	DeleteAvailabilityWindow(ctx context.Context, professionalID string) error

	// Time Blocks
	CreateTimeBlock(ctx context.Context, block *models.TimeBlock) error
	GetTimeBlock(ctx context.Context, id string) (*models.TimeBlock, error)
	ListTimeBlocks(ctx context.Context, professionalID string, from, to *time.Time) ([]*models.TimeBlock, error)
	UpdateTimeBlock(ctx context.Context, block *models.TimeBlock) error
	DeleteTimeBlock(ctx context.Context, id string) error

	// Bookings
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, professionalID, clientID, status *string) ([]*models.Booking, error)
	ListScheduledBookings(ctx context.Context, professionalID string, from, to time.Time) ([]*models.Booking, error)
	CompleteElapsedBookings(ctx context.Context, now time.Time) (int64, error)
	CompleteBooking(ctx context.Context, id string, now time.Time) (bool, error)
}

type VideoProvider interface {
	CreateSession(ctx context.Context) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
	IssueToken(sessionID, userID string, role video.Role, expiresAt time.Time, metadata map[string]string) (string, error)
}

type Notifier interface {
	BookingConfirmed(b *models.Booking, to *models.Client, with *models.Professional)
	BookingCancelled(b *models.Booking, to *models.Client, refunded bool)
}

// CompletionScheduler arranges for a booking to be marked completed at its end.
type CompletionScheduler interface {
	ScheduleCompletion(ctx context.Context, bookingID string, at time.Time) error
}

type Params struct {
	HorizonDays  int
	SlotDuration time.Duration
	JoinWindow   time.Duration
	Location     *time.Location
}

type Service struct {
	log       *slog.Logger
	store     Store
	video     VideoProvider
	notifier  Notifier
	scheduler CompletionScheduler
	metrics   *metrics.BookingMetrics
	tracer    trace.Tracer
	params    Params
	now       func() time.Time
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithCompletionScheduler(cs CompletionScheduler) Option {
	return func(s *Service) { s.scheduler = cs }
}

func WithMetrics(m *metrics.BookingMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(log *slog.Logger, store Store, vp VideoProvider, params Params, opts ...Option) *Service {
	if params.Location == nil {
		params.Location = time.UTC
	}

	s := &Service{
		log:    log,
		store:  store,
		video:  vp,
		tracer: otel.Tracer("booking-service/internal/service"),
		params: params,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}
