package catalog

import "errors"

var (
	ErrSpecialtyNotFound    = errors.New("specialty not found")
	ErrDoctorNotFound       = errors.New("doctor not found")
	ErrImageStorageDisabled = errors.New("image storage is not configured")
	ErrUnsupportedImage     = errors.New("unsupported image type")
	ErrImageTooLarge        = errors.New("image is too large")
)
