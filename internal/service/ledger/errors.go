package ledger

import "errors"

var (
	ErrValidationFailed  = errors.New("appointment validation failed")
	ErrConflict          = errors.New("appointment already exists")
	ErrNotFound          = errors.New("appointment not found")
	ErrInvalidTransition = errors.New("appointment status transition not allowed")
)
