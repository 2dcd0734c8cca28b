package identity

import "errors"

var (
	ErrInvalidCredential = errors.New("phone/email or password is incorrect")
	ErrConflict          = errors.New("account already registered")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrPasswordTooShort  = errors.New("password is too short")
	ErrNameRequired      = errors.New("name is required")
	ErrUnknownSpecialty  = errors.New("specialty does not exist")
	ErrSessionNotFound   = errors.New("session not found or expired")
	ErrInvalidToken      = errors.New("invalid or expired token")
)
