package response

import "errors"

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error Codes
type ErrCode string

var (
	FAILED_REQUEST          ErrCode = "REQUEST_FAILED"
	BAD_REQUEST             ErrCode = "FAILED_TO_DECODE"
	VALIDATION_FAILED       ErrCode = "VALIDATION_FAILED"
	MISSING_FIELDS          ErrCode = "MISSING_FIELDS"
	NOT_FOUND               ErrCode = "NOT_FOUND"
	PROFESSIONAL_NOT_FOUND  ErrCode = "PROFESSIONAL_NOT_FOUND"
	PROFESSIONAL_UNVERIFIED ErrCode = "PROFESSIONAL_NOT_VERIFIED"
	CLIENT_NOT_FOUND        ErrCode = "CLIENT_NOT_FOUND"
	INSUFFICIENT_CREDITS    ErrCode = "INSUFFICIENT_CREDITS"
	SLOT_CONFLICT           ErrCode = "SLOT_CONFLICT"
	SLOT_IN_PAST            ErrCode = "SLOT_IN_PAST"
	OUTSIDE_AVAILABILITY    ErrCode = "OUTSIDE_AVAILABILITY"
	VIDEO_SESSION_FAILED    ErrCode = "VIDEO_SESSION_CREATION_FAILED"
	BOOKING_NOT_SCHEDULED   ErrCode = "BOOKING_NOT_SCHEDULED"
	FORBIDDEN               ErrCode = "FORBIDDEN"
	TOO_EARLY               ErrCode = "TOO_EARLY"
	CONFLICT                ErrCode = "CONFLICT"
)

var (
	ErrBadRequest             = errors.New("bad request")
	ErrInvalidID              = errors.New("invalid id")
	ErrInvalidField           = errors.New("invalid field")
	ErrMissingFields          = errors.New("missing required fields")
	ErrInvalidTimeRange       = errors.New("end_time must be after start_time")
	ErrNotFound               = errors.New("resource not found")
	ErrProfessionalNotFound   = errors.New("professional not found")
	ErrProfessionalUnverified = errors.New("professional is not verified")
	ErrClientNotFound         = errors.New("client not found")
	ErrInsufficientCredits    = errors.New("insufficient credits")
	ErrSlotConflict           = errors.New("slot is already taken")
	ErrSlotInPast             = errors.New("slot starts in the past")
	ErrOutsideAvailability    = errors.New("slot is outside the availability window")
	ErrVideoSessionFailed     = errors.New("video session creation failed")
	ErrBookingNotScheduled    = errors.New("booking is not scheduled")
	ErrForbidden              = errors.New("requester is not a participant")
	ErrTooEarly               = errors.New("session is not open yet")
	ErrConflict               = errors.New("conflict")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}
