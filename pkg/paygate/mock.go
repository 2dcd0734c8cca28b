package paygate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/medibook_backend/config"
)

// Mock approves every card except those starting with the decline prefix.
// Transaction references look like txn_<unix millis>_<8 hex chars>, so two
// charges in the same millisecond still get distinct references.
type Mock struct {
	declinePrefix string
	latency       time.Duration
	now           func() time.Time
}

func NewMock(cfg config.PaymentMockConfig) *Mock {
	return &Mock{
		declinePrefix: cfg.DeclinePrefix,
		latency:       time.Duration(cfg.LatencyMs) * time.Millisecond,
		now:           time.Now,
	}
}

// WithClock replaces the clock used for transaction references.
func (m *Mock) WithClock(now func() time.Time) *Mock {
	m.now = now
	return m
}

func (m *Mock) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := validateCharge(req); err != nil {
		return nil, err
	}
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.declinePrefix != "" && strings.HasPrefix(req.Instrument.Digits(), m.declinePrefix) {
		return nil, fmt.Errorf("%w: card %s", ErrDeclined, req.Instrument.Masked())
	}
	now := m.now()
	return &ChargeResult{
		Success:        true,
		TransactionRef: fmt.Sprintf("txn_%d_%s", now.UnixMilli(), uuid.NewString()[:8]),
		ProcessedAt:    now,
	}, nil
}

func (m *Mock) Refund(ctx context.Context, transactionRef string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if transactionRef == "" {
		return fmt.Errorf("%w: empty transaction reference", ErrUnexpectedResponse)
	}
	return m.wait(ctx)
}

func (m *Mock) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
