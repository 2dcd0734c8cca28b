// Package paygate holds the card payment gateways: an HTTP client for a
// REST acquirer and an in-process mock that mirrors the demo checkout.
package paygate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

var (
	ErrDeclined           = errors.New("paygate: payment declined")
	ErrInvalidAmount      = errors.New("paygate: amount must be positive")
	ErrInvalidInstrument  = errors.New("paygate: card number is required")
	ErrUnexpectedResponse = errors.New("paygate: unexpected response from gateway")
)

// Instrument is the card presented at checkout.
type Instrument struct {
	Number string `json:"number"`
	Holder string `json:"holder,omitempty"`
	Expiry string `json:"expiry,omitempty"`
}

// Digits returns the card number without separators.
func (i Instrument) Digits() string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, i.Number)
}

// Masked returns the card number with everything except the last four
// digits hidden, for logs.
func (i Instrument) Masked() string {
	d := i.Digits()
	if len(d) <= 4 {
		return d
	}
	return strings.Repeat("*", len(d)-4) + d[len(d)-4:]
}

type ChargeRequest struct {
	Amount     int64
	Currency   string
	Instrument Instrument
	// Reference is sent as the idempotency key so retried requests are not
	// charged twice.
	Reference string
}

type ChargeResult struct {
	Success        bool
	TransactionRef string
	ProcessedAt    time.Time
}

// Gateway is implemented by every payment backend.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, transactionRef string, amount int64) error
}

// APIError is the error body returned by the HTTP gateway.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paygate: status %d: %s (%s)", e.StatusCode, e.Message, e.Code)
}

func validateCharge(req ChargeRequest) error {
	if req.Amount <= 0 {
		return ErrInvalidAmount
	}
	if req.Instrument.Digits() == "" {
		return ErrInvalidInstrument
	}
	return nil
}
