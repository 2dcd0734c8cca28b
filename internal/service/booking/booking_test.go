package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/service/catalog"
	"github.com/Alijeyrad/medibook_backend/internal/service/identity"
	"github.com/Alijeyrad/medibook_backend/internal/service/ledger"
	"github.com/Alijeyrad/medibook_backend/internal/service/payment"
	"github.com/Alijeyrad/medibook_backend/pkg/events"
	"github.com/Alijeyrad/medibook_backend/pkg/paygate"
)

const declinedCard = "4000 0000 0000 0002"

var goodCard = paygate.Instrument{Number: "4242 4242 4242 4242", Holder: "John Doe"}

// spyLedger counts Create calls on top of the real ledger.
type spyLedger struct {
	ledger.Service
	mu      sync.Mutex
	creates int
}

func (l *spyLedger) Create(ctx context.Context, req ledger.CreateRequest) (*repo.Appointment, error) {
	l.mu.Lock()
	l.creates++
	l.mu.Unlock()
	return l.Service.Create(ctx, req)
}

// spyPayments records refunds on top of the real payment service.
type spyPayments struct {
	payment.Service
	mu      sync.Mutex
	refunds []string
}

func (p *spyPayments) Refund(ctx context.Context, ref string, amount int64) error {
	p.mu.Lock()
	p.refunds = append(p.refunds, ref)
	p.mu.Unlock()
	return p.Service.Refund(ctx, ref, amount)
}

type fixture struct {
	svc       *bookingService
	db        *repo.Client
	ledger    *spyLedger
	payments  *spyPayments
	bus       *events.Recorder
	session   *identity.Session
	doctor    *repo.Doctor
	specialty *repo.Specialty
}

func testConfig() *config.Config {
	return &config.Config{
		Payment: config.PaymentConfig{
			TimeoutSeconds: 1,
			Mock:           config.PaymentMockConfig{DeclinePrefix: "4000000000000002"},
		},
		Booking: config.BookingConfig{
			ConsultationFee: 200,
			Currency:        "INR",
			RefundOnFailure: true,
			DateLayout:      "02 Jan 2006",
		},
	}
}

func newFixture(t *testing.T, cfg *config.Config, gw paygate.Gateway) *fixture {
	t.Helper()
	ctx := context.Background()
	db := repo.NewMemoryClient()

	sp := &repo.Specialty{Name: "Cardiology"}
	require.NoError(t, db.Specialty.Create(ctx, sp))
	other := &repo.Specialty{Name: "Dermatology"}
	require.NoError(t, db.Specialty.Create(ctx, other))
	p := &repo.Patient{Name: "John Doe", Phone: "9876543210"}
	require.NoError(t, db.Patient.Create(ctx, p))
	d := &repo.Doctor{Name: "Dr. Sarah Johnson", Email: "sarah@hospital.com", Specialty: "Cardiology", Rating: 4.8}
	require.NoError(t, db.Doctor.Create(ctx, d))

	if gw == nil {
		gw = payment.NewGateway(cfg.Payment)
	}
	pays := &spyPayments{Service: payment.New(gw, cfg)}
	led := &spyLedger{Service: ledger.New(db, nil, cfg.Ledger)}
	bus := &events.Recorder{}

	svc, err := New(catalog.New(db, nil), pays, led, bus, cfg)
	require.NoError(t, err)

	return &fixture{
		svc:       svc.(*bookingService),
		db:        db,
		ledger:    led,
		payments:  pays,
		bus:       bus,
		session:   &identity.Session{ID: uuid.New(), Role: identity.RolePatient, SubjectID: p.ID, Name: p.Name, Phone: p.Phone},
		doctor:    d,
		specialty: sp,
	}
}

func (f *fixture) request(card string) BookRequest {
	return BookRequest{DoctorID: f.doctor.ID, DiseaseID: f.specialty.ID, Instrument: paygate.Instrument{Number: card}}
}

func TestGenerateAppointmentID(t *testing.T) {
	now := time.UnixMilli(1700000123456)
	assert.Equal(t, "3210-APPT-123456", GenerateAppointmentID("9876543210", now))
	assert.Equal(t, "3210-APPT-000042", GenerateAppointmentID("+91 98765-43210", time.UnixMilli(1700000000042)))
}

func TestBook_Success(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	fixed := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return fixed }

	conf, err := f.svc.Book(context.Background(), f.session, BookRequest{DoctorID: f.doctor.ID, DiseaseID: f.specialty.ID, Instrument: goodCard})
	require.NoError(t, err)

	assert.Equal(t, GenerateAppointmentID("9876543210", fixed), conf.AppointmentID)
	assert.Equal(t, repo.StatusPending, conf.Status)
	assert.Equal(t, int64(200), conf.Amount)
	assert.Equal(t, "INR", conf.Currency)
	assert.Equal(t, "Dr. Sarah Johnson", conf.DoctorName)
	assert.Equal(t, "Cardiology", conf.SpecialtyName)
	assert.Equal(t, "14 Mar 2025", conf.Date)
	assert.Regexp(t, `^txn_\d+_[0-9a-f]{8}$`, conf.TransactionID)

	stored, err := f.db.Appointment.Get(context.Background(), conf.AppointmentID)
	require.NoError(t, err)
	assert.Equal(t, repo.StatusPending, stored.Status)
	assert.Equal(t, f.session.SubjectID, stored.PatientID)

	msgs := f.bus.Published()
	require.Len(t, msgs, 1)
	assert.Equal(t, events.AppointmentCreated(f.doctor.ID), msgs[0].Subject)
	assert.Equal(t, conf.AppointmentID, string(msgs[0].Data))
}

func TestBook_UniqueIDs(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	tick := time.UnixMilli(1700000000000)
	f.svc.now = func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		conf, err := f.svc.Book(context.Background(), f.session, BookRequest{DoctorID: f.doctor.ID, DiseaseID: f.specialty.ID, Instrument: goodCard})
		require.NoError(t, err)
		assert.NotEmpty(t, conf.AppointmentID)
		assert.False(t, seen[conf.AppointmentID], conf.AppointmentID)
		seen[conf.AppointmentID] = true
	}
}

func TestBook_SameMillisecondDifferentPatients(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	fixed := func() time.Time { return time.UnixMilli(1700000123456) }
	f.svc.now = fixed
	mock := paygate.NewMock(config.PaymentMockConfig{}).WithClock(fixed)
	f.payments.Service = payment.New(mock, testConfig())

	jane := &repo.Patient{Name: "Jane Smith", Phone: "9876543211"}
	require.NoError(t, f.db.Patient.Create(context.Background(), jane))
	janeSession := &identity.Session{ID: uuid.New(), Role: identity.RolePatient, SubjectID: jane.ID, Name: jane.Name, Phone: jane.Phone}

	first, err := f.svc.Book(context.Background(), f.session, f.request(goodCard.Number))
	require.NoError(t, err)
	second, err := f.svc.Book(context.Background(), janeSession, f.request(goodCard.Number))
	require.NoError(t, err)

	assert.Equal(t, "3210-APPT-123456", first.AppointmentID)
	assert.Equal(t, "3211-APPT-123456", second.AppointmentID)
	assert.NotEqual(t, first.TransactionID, second.TransactionID)
	assert.Empty(t, f.payments.refunds)
}

func TestBook_DeclineNeverTouchesLedger(t *testing.T) {
	f := newFixture(t, testConfig(), nil)

	_, err := f.svc.Book(context.Background(), f.session, f.request(declinedCard))
	require.ErrorIs(t, err, ErrPaymentFailed)
	assert.ErrorIs(t, err, payment.ErrDeclined)
	assert.Equal(t, 0, f.ledger.creates)
	assert.Empty(t, f.bus.Published())

	list, err := f.db.Appointment.ListByPatient(context.Background(), f.session.SubjectID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBook_PaymentTimeout(t *testing.T) {
	slow := paygate.NewMock(config.PaymentMockConfig{LatencyMs: 5000})
	f := newFixture(t, testConfig(), slow)

	_, err := f.svc.Book(context.Background(), f.session, f.request("4242424242424242"))
	require.ErrorIs(t, err, ErrPaymentFailed)
	assert.ErrorIs(t, err, payment.ErrGatewayTimeout)
	assert.Equal(t, 0, f.ledger.creates)
}

func TestBook_LedgerFailureRefunds(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	fixed := time.UnixMilli(1700000123456)
	f.svc.now = func() time.Time { return fixed }

	// an existing row with the same id forces a conflict
	require.NoError(t, f.db.Appointment.Create(context.Background(), &repo.Appointment{
		AppointmentID: "3210-APPT-123456",
		PatientID:     f.session.SubjectID,
		DoctorID:      f.doctor.ID,
		DiseaseID:     f.specialty.ID,
		Amount:        200,
		TransactionID: "txn_existing",
		Status:        repo.StatusPending,
	}))

	_, err := f.svc.Book(context.Background(), f.session, f.request("4242424242424242"))
	require.ErrorIs(t, err, ErrBookingFailed)
	assert.ErrorIs(t, err, ledger.ErrConflict)
	assert.Equal(t, 1, f.ledger.creates)
	require.Len(t, f.payments.refunds, 1)
	assert.Regexp(t, `^txn_\d+_[0-9a-f]{8}$`, f.payments.refunds[0])
	assert.Empty(t, f.bus.Published())
}

func TestBook_LedgerFailureWithoutRefund(t *testing.T) {
	cfg := testConfig()
	cfg.Booking.RefundOnFailure = false
	f := newFixture(t, cfg, nil)
	f.session.SubjectID = uuid.New() // unknown patient fails the reference check

	_, err := f.svc.Book(context.Background(), f.session, f.request("4242424242424242"))
	require.ErrorIs(t, err, ErrBookingFailed)
	assert.ErrorIs(t, err, ledger.ErrValidationFailed)
	assert.Empty(t, f.payments.refunds)
}

func TestBook_Preconditions(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	ctx := context.Background()
	other, err := f.db.Specialty.GetByName(ctx, "Dermatology")
	require.NoError(t, err)

	tests := []struct {
		name string
		sess *identity.Session
		req  BookRequest
		want error
	}{
		{"no session", nil, f.request("4242"), ErrNotPatient},
		{"doctor session", &identity.Session{Role: identity.RoleDoctor}, f.request("4242"), ErrNotPatient},
		{"unknown doctor", f.session, BookRequest{DoctorID: uuid.New(), DiseaseID: f.specialty.ID}, catalog.ErrDoctorNotFound},
		{"unknown disease", f.session, BookRequest{DoctorID: f.doctor.ID, DiseaseID: uuid.New()}, catalog.ErrSpecialtyNotFound},
		{"specialty mismatch", f.session, BookRequest{DoctorID: f.doctor.ID, DiseaseID: other.ID}, ErrSpecialtyMismatch},
		{"negative amount", f.session, BookRequest{DoctorID: f.doctor.ID, DiseaseID: f.specialty.ID, Amount: -1}, ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Book(ctx, tt.sess, tt.req)
			require.ErrorIs(t, err, ErrBookingFailed)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, errors.Is(err, ErrPaymentFailed))
		})
	}
	assert.Equal(t, 0, f.ledger.creates)
}

func TestBook_ExplicitAmount(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	req := f.request("4242424242424242")
	req.Amount = 500

	conf, err := f.svc.Book(context.Background(), f.session, req)
	require.NoError(t, err)
	assert.Equal(t, int64(500), conf.Amount)
}
