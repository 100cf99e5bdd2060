package api

import "time"

// Availability

type AvailabilityRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status,omitempty"`
}

type AvailabilityResponse struct {
	ProfessionalID string    `json:"professional_id"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	Status         string    `json:"status"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Time blocks

type TimeBlockRequest struct {
	ProfessionalID string    `json:"professional_id"`
	Start          time.Time `json:"start_time"`
	End            time.Time `json:"end_time"`
	Reason         string    `json:"reason"`
	Type           string    `json:"type"`
}

type TimeBlockResponse struct {
	ID             string    `json:"id"`
	ProfessionalID string    `json:"professional_id"`
	Start          time.Time `json:"start_time"`
	End            time.Time `json:"end_time"`
	Reason         string    `json:"reason"`
	Type           string    `json:"type"`
}

// Slots

type SlotResponse struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
	Label string    `json:"label"`
}

type DayResponse struct {
	Date  string         `json:"date"`
	Label string         `json:"label"`
	Slots []SlotResponse `json:"slots"`
}

type SlotsResponse struct {
	ProfessionalID string        `json:"professional_id"`
	Message        string        `json:"message,omitempty"`
	Days           []DayResponse `json:"days"`
}

// Bookings

// BookingRequest carries timestamps as RFC3339 strings so missing and
// malformed values can be told apart.
type BookingRequest struct {
	ProfessionalID string `json:"professional_id"`
	ClientID       string `json:"client_id"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	Note           string `json:"note,omitempty"`
}

type BookingResponse struct {
	ID             string    `json:"id"`
	ProfessionalID string    `json:"professional_id"`
	ClientID       string    `json:"client_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Status         string    `json:"status"`
	SessionID      string    `json:"session_id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Age            int       `json:"age"`
	Gender         string    `json:"gender"`
	Note           string    `json:"note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type CancelBookingRequest struct {
	UserID string `json:"user_id"`
}

type CancelBookingResponse struct {
	Booking  BookingResponse `json:"booking"`
	Refunded bool            `json:"refunded"`
}

type SessionRequest struct {
	UserID string `json:"user_id"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Clients

type ClientResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	CreditBalance int    `json:"credit_balance"`
}

type CreditTopUpRequest struct {
	Amount     int    `json:"amount"`
	PaymentRef string `json:"payment_ref"`
}

type CreditTopUpResponse struct {
	ClientID      string `json:"client_id"`
	CreditBalance int    `json:"credit_balance"`
	Applied       bool   `json:"applied"`
}
