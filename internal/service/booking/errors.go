package booking

import "errors"

var (
	ErrPaymentFailed     = errors.New("payment failed")
	ErrBookingFailed     = errors.New("booking failed")
	ErrNotPatient        = errors.New("only patients can book appointments")
	ErrSpecialtyMismatch = errors.New("doctor does not practice the selected specialty")
	ErrInvalidAmount     = errors.New("booking amount must be positive")
)
