package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/service/catalog"
	"github.com/Alijeyrad/medibook_backend/internal/service/identity"
	"github.com/Alijeyrad/medibook_backend/internal/service/ledger"
	"github.com/Alijeyrad/medibook_backend/internal/service/payment"
	"github.com/Alijeyrad/medibook_backend/pkg/events"
	"github.com/Alijeyrad/medibook_backend/pkg/paygate"
	"github.com/Alijeyrad/medibook_backend/pkg/util/phone"
)

const instrumentationName = "github.com/Alijeyrad/medibook_backend/internal/service/booking"

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type BookRequest struct {
	DoctorID  uuid.UUID
	DiseaseID uuid.UUID
	// Amount falls back to the consultation fee when zero.
	Amount     int64
	Instrument paygate.Instrument
}

// Confirmation is returned once to the caller that booked.
type Confirmation struct {
	AppointmentID   string                 `json:"appointment_id"`
	DoctorName      string                 `json:"doctor_name"`
	SpecialtyName   string                 `json:"specialty_name"`
	Amount          int64                  `json:"amount"`
	Currency        string                 `json:"currency"`
	TransactionID   string                 `json:"transaction_id"`
	Status          repo.AppointmentStatus `json:"status"`
	Date            string                 `json:"date"`
	AppointmentDate time.Time              `json:"appointment_date"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Book(ctx context.Context, sess *identity.Session, req BookRequest) (*Confirmation, error)
}

// GenerateAppointmentID builds last4(phone digits) + "-APPT-" + last6(unix ms).
func GenerateAppointmentID(patientPhone string, now time.Time) string {
	return fmt.Sprintf("%s-APPT-%06d", phone.LastDigits(patientPhone, 4), now.UnixMilli()%1_000_000)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type bookingService struct {
	catalog  catalog.Service
	payments payment.Service
	ledger   ledger.Service
	bus      events.Publisher

	fee             int64
	currency        string
	refundOnFailure bool
	dateLayout      string
	now             func() time.Time

	tracer   trace.Tracer
	bookings metric.Int64Counter
	refunds  metric.Int64Counter
}

func New(
	cat catalog.Service,
	payments payment.Service,
	led ledger.Service,
	bus events.Publisher,
	cfg *config.Config,
) (Service, error) {
	meter := otel.Meter(instrumentationName)
	bookings, err := meter.Int64Counter("medibook.bookings",
		metric.WithDescription("Booking attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("booking counter: %w", err)
	}
	refunds, err := meter.Int64Counter("medibook.booking.refunds",
		metric.WithDescription("Compensating refunds after a failed ledger write"),
	)
	if err != nil {
		return nil, fmt.Errorf("refund counter: %w", err)
	}

	fee := cfg.Booking.ConsultationFee
	if fee <= 0 {
		fee = 200
	}
	layout := cfg.Booking.DateLayout
	if layout == "" {
		layout = "02 Jan 2006"
	}

	return &bookingService{
		catalog:         cat,
		payments:        payments,
		ledger:          led,
		bus:             bus,
		fee:             fee,
		currency:        cfg.Booking.Currency,
		refundOnFailure: cfg.Booking.RefundOnFailure,
		dateLayout:      layout,
		now:             time.Now,
		tracer:          otel.Tracer(instrumentationName),
		bookings:        bookings,
		refunds:         refunds,
	}, nil
}

func (s *bookingService) Book(ctx context.Context, sess *identity.Session, req BookRequest) (conf *Confirmation, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.Book",
		trace.WithAttributes(
			attribute.String("doctor.id", req.DoctorID.String()),
			attribute.String("disease.id", req.DiseaseID.String()),
		),
	)
	defer func() {
		outcome := "confirmed"
		if err != nil {
			outcome = "failed"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.bookings.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		span.End()
	}()

	if !sess.IsPatient() {
		return nil, fmt.Errorf("%w: %w", ErrBookingFailed, ErrNotPatient)
	}

	doctor, err := s.catalog.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBookingFailed, err)
	}
	disease, err := s.catalog.GetSpecialty(ctx, req.DiseaseID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBookingFailed, err)
	}
	if doctor.Specialty != disease.Name {
		return nil, fmt.Errorf("%w: %w", ErrBookingFailed, ErrSpecialtyMismatch)
	}

	amount := req.Amount
	if amount == 0 {
		amount = s.fee
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: %w", ErrBookingFailed, ErrInvalidAmount)
	}

	charge, err := s.payments.Charge(ctx, amount, req.Instrument)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}
	span.AddEvent("payment.charged", trace.WithAttributes(attribute.String("transaction.id", charge.TransactionRef)))

	now := s.now()
	appt, err := s.ledger.Create(ctx, ledger.CreateRequest{
		AppointmentID:   GenerateAppointmentID(sess.Phone, now),
		PatientID:       sess.SubjectID,
		DoctorID:        doctor.ID,
		DiseaseID:       disease.ID,
		Amount:          amount,
		TransactionID:   charge.TransactionRef,
		AppointmentDate: now,
	})
	if err != nil {
		s.compensate(ctx, charge.TransactionRef, amount, err)
		return nil, fmt.Errorf("%w: %w", ErrBookingFailed, err)
	}
	span.SetAttributes(attribute.String("appointment.id", appt.AppointmentID))

	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.AppointmentCreated(doctor.ID), []byte(appt.AppointmentID)); err != nil {
			slog.Warn("booking: publish appointment created failed", "appointment_id", appt.AppointmentID, "err", err)
		}
	}

	return &Confirmation{
		AppointmentID:   appt.AppointmentID,
		DoctorName:      doctor.Name,
		SpecialtyName:   disease.Name,
		Amount:          appt.Amount,
		Currency:        s.currency,
		TransactionID:   appt.TransactionID,
		Status:          appt.Status,
		Date:            appt.AppointmentDate.Format(s.dateLayout),
		AppointmentDate: appt.AppointmentDate,
	}, nil
}

// compensate refunds a charge whose appointment could not be recorded. It
// runs even if the request context was cancelled.
func (s *bookingService) compensate(ctx context.Context, txRef string, amount int64, cause error) {
	if !s.refundOnFailure {
		slog.Error("booking: ledger write failed after charge, refund disabled",
			"transaction_id", txRef, "amount", amount, "err", cause)
		return
	}

	err := s.payments.Refund(context.WithoutCancel(ctx), txRef, amount)
	result := "refunded"
	if err != nil {
		result = "refund_failed"
		slog.Error("booking: compensating refund failed",
			"transaction_id", txRef, "amount", amount, "cause", cause, "err", err)
	} else {
		slog.Warn("booking: charge refunded after ledger failure",
			"transaction_id", txRef, "amount", amount, "cause", cause)
	}
	s.refunds.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
