package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/pkg/paygate"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type ChargeResult struct {
	Success        bool      `json:"success"`
	TransactionRef string    `json:"transaction_ref"`
	ProcessedAt    time.Time `json:"processed_at"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Charge(ctx context.Context, amount int64, instrument paygate.Instrument) (*ChargeResult, error)
	Refund(ctx context.Context, transactionRef string, amount int64) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type paymentService struct {
	gw       paygate.Gateway
	currency string
	timeout  time.Duration
}

func New(gw paygate.Gateway, cfg *config.Config) Service {
	timeout := time.Duration(cfg.Payment.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &paymentService{gw: gw, currency: cfg.Booking.Currency, timeout: timeout}
}

// NewGateway selects the gateway named by payment.provider.
func NewGateway(cfg config.PaymentConfig) paygate.Gateway {
	if strings.EqualFold(cfg.Provider, config.PaymentProviderHTTP) {
		return paygate.NewHTTPClient(cfg.HTTP, time.Duration(cfg.TimeoutSeconds)*time.Second)
	}
	return paygate.NewMock(cfg.Mock)
}

func (s *paymentService) Charge(ctx context.Context, amount int64, instrument paygate.Instrument) (*ChargeResult, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.gw.Charge(cctx, paygate.ChargeRequest{
		Amount:     amount,
		Currency:   s.currency,
		Instrument: instrument,
	})
	if err != nil {
		slog.Info("payment: charge failed", "card", instrument.Masked(), "amount", amount, "err", err)
		return nil, mapGatewayError(cctx, err)
	}
	if !res.Success || res.TransactionRef == "" {
		return nil, fmt.Errorf("%w: charge not confirmed", ErrGatewayFailure)
	}
	return &ChargeResult{Success: true, TransactionRef: res.TransactionRef, ProcessedAt: res.ProcessedAt}, nil
}

func (s *paymentService) Refund(ctx context.Context, transactionRef string, amount int64) error {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.gw.Refund(cctx, transactionRef, amount); err != nil {
		return mapGatewayError(cctx, err)
	}
	return nil
}

func mapGatewayError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrGatewayTimeout, err)
	case errors.Is(err, paygate.ErrDeclined):
		return fmt.Errorf("%w: %v", ErrDeclined, err)
	case errors.Is(err, paygate.ErrInvalidAmount), errors.Is(err, paygate.ErrInvalidInstrument):
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	default:
		return fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}
}
