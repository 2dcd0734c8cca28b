package payment

import "errors"

var (
	ErrDeclined       = errors.New("payment declined")
	ErrGatewayTimeout = errors.New("payment gateway timed out")
	ErrGatewayFailure = errors.New("payment gateway error")
	ErrInvalidRequest = errors.New("invalid payment request")
)
