package models

import "time"

type ProfessionalStatus string

const (
	ProfessionalVerified  ProfessionalStatus = "VERIFIED"
	ProfessionalPending   ProfessionalStatus = "PENDING"
	ProfessionalSuspended ProfessionalStatus = "SUSPENDED"
)

type Professional struct {
	ID     string             `db:"id"`
	Name   string             `db:"name"`
	Email  string             `db:"email"`
	Status ProfessionalStatus `db:"status"`
}

type Client struct {
	ID            string `db:"id"`
	Name          string `db:"name"`
	Email         string `db:"email"`
	CreditBalance int    `db:"credit_balance"`
}

type WindowStatus string

const (
	WindowActive   WindowStatus = "ACTIVE"
	WindowInactive WindowStatus = "INACTIVE"
)

// AvailabilityWindow is the single recurring daily window of a professional.
// Start and End are offsets from midnight.
type AvailabilityWindow struct {
	ProfessionalID string        `db:"professional_id"`
	DailyStart     time.Duration `db:"daily_start_time"`
	DailyEnd       time.Duration `db:"daily_end_time"`
	Status         WindowStatus  `db:"status"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

type BookingStatus string

const (
	BookingScheduled BookingStatus = "SCHEDULED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID             string        `db:"id"`
	ProfessionalID string        `db:"professional_id"`
	ClientID       string        `db:"client_id"`
	StartTime      time.Time     `db:"start_time"`
	EndTime        time.Time     `db:"end_time"`
	Status         BookingStatus `db:"status"`
	SessionID      string        `db:"session_id"`
	ClientName     string        `db:"client_name"`
	ClientPhone    string        `db:"client_phone"`
	ClientAge      int           `db:"client_age"`
	ClientGender   string        `db:"client_gender"`
	Note           string        `db:"note"`
	CreatedAt      time.Time     `db:"created_at"`
}

type TimeBlockType string

const (
	TimeBlockVacation TimeBlockType = "VACATION"
	TimeBlockSick     TimeBlockType = "SICK"
	TimeBlockOther    TimeBlockType = "OTHER"
)

// TimeBlock removes an absolute interval from a professional's availability.
type TimeBlock struct {
	ID             string        `db:"id"`
	ProfessionalID string        `db:"professional_id"`
	Start          time.Time     `db:"start_time"`
	End            time.Time     `db:"end_time"`
	Reason         string        `db:"reason"`
	Type           TimeBlockType `db:"type"`
}

type CreditPurchase struct {
	PaymentRef string    `db:"payment_ref"`
	ClientID   string    `db:"client_id"`
	Amount     int       `db:"amount"`
	CreatedAt  time.Time `db:"created_at"`
}
