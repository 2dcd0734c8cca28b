package notification

import "errors"

var (
	ErrDeliveryFailed   = errors.New("notification delivery failed")
	ErrGatewayTimeout   = errors.New("notification gateway timed out")
	ErrInvalidRecipient = errors.New("invalid notification recipient")
)
