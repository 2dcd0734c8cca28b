package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/pkg/paygate"
)

type stubGateway struct {
	chargeErr error
	refundErr error
	block     bool
	charged   []paygate.ChargeRequest
}

func (g *stubGateway) Charge(ctx context.Context, req paygate.ChargeRequest) (*paygate.ChargeResult, error) {
	g.charged = append(g.charged, req)
	if g.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	return &paygate.ChargeResult{Success: true, TransactionRef: "txn_1"}, nil
}

func (g *stubGateway) Refund(ctx context.Context, ref string, amount int64) error {
	return g.refundErr
}

func testConfig() *config.Config {
	return &config.Config{
		Payment: config.PaymentConfig{TimeoutSeconds: 1},
		Booking: config.BookingConfig{Currency: "INR"},
	}
}

func TestCharge_Success(t *testing.T) {
	gw := &stubGateway{}
	svc := New(gw, testConfig())

	res, err := svc.Charge(context.Background(), 200, paygate.Instrument{Number: "4111"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "txn_1", res.TransactionRef)
	require.Len(t, gw.charged, 1)
	assert.Equal(t, "INR", gw.charged[0].Currency)
}

func TestCharge_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"declined", paygate.ErrDeclined, ErrDeclined},
		{"bad amount", paygate.ErrInvalidAmount, ErrInvalidRequest},
		{"missing card", paygate.ErrInvalidInstrument, ErrInvalidRequest},
		{"deadline", context.DeadlineExceeded, ErrGatewayTimeout},
		{"other", errors.New("connection reset"), ErrGatewayFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&stubGateway{chargeErr: tt.err}, testConfig())
			_, err := svc.Charge(context.Background(), 200, paygate.Instrument{Number: "4111"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCharge_TimeoutBoundsSlowGateway(t *testing.T) {
	svc := New(&stubGateway{block: true}, testConfig()).(*paymentService)
	svc.timeout = 20 * time.Millisecond

	start := time.Now()
	_, err := svc.Charge(context.Background(), 200, paygate.Instrument{Number: "4111"})
	assert.ErrorIs(t, err, ErrGatewayTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCharge_MockGatewayDeclinePrefix(t *testing.T) {
	gw := NewGateway(config.PaymentConfig{Mock: config.PaymentMockConfig{DeclinePrefix: "4000000000000002"}})
	svc := New(gw, testConfig())

	_, err := svc.Charge(context.Background(), 200, paygate.Instrument{Number: "4000 0000 0000 0002"})
	assert.ErrorIs(t, err, ErrDeclined)

	res, err := svc.Charge(context.Background(), 200, paygate.Instrument{Number: "4242 4242 4242 4242"})
	require.NoError(t, err)
	assert.Regexp(t, `^txn_\d+_[0-9a-f]{8}$`, res.TransactionRef)
}

func TestNewGateway_Provider(t *testing.T) {
	assert.IsType(t, &paygate.Mock{}, NewGateway(config.PaymentConfig{}))
	assert.IsType(t, &paygate.HTTPClient{}, NewGateway(config.PaymentConfig{Provider: "http", HTTP: config.PaymentHTTPConfig{BaseURL: "http://localhost"}}))
}

func TestRefund(t *testing.T) {
	svc := New(&stubGateway{}, testConfig())
	assert.NoError(t, svc.Refund(context.Background(), "txn_1", 200))

	svc = New(&stubGateway{refundErr: errors.New("boom")}, testConfig())
	assert.ErrorIs(t, svc.Refund(context.Background(), "txn_1", 200), ErrGatewayFailure)
}
