package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/service/ledger"
	"github.com/Alijeyrad/medibook_backend/internal/service/notification"
	"github.com/Alijeyrad/medibook_backend/pkg/constants"
	"github.com/Alijeyrad/medibook_backend/pkg/email"
	"github.com/Alijeyrad/medibook_backend/pkg/events"
)

const workerTimeout = 15 * time.Second

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc       fx.Lifecycle
	NC       *nats.Conn
	DB       *repo.Client
	Ledger   ledger.Service
	Notifier notification.Service
	Email    *email.Client
	Cfg      *config.Config
}

func RegisterWorkers(p WorkerParams) {
	if p.NC == nil {
		slog.Info("workers: nats disabled, follow-up notifications are off")
		return
	}
	w := &appointmentWorker{
		db:       p.DB,
		ledger:   p.Ledger,
		notifier: p.Notifier,
		mail:     p.Email,
		currency: p.Cfg.Booking.Currency,
		layout:   dateLayout(p.Cfg.Booking),
		appName:  p.Cfg.Email.AppName,
	}
	var subs []*nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			subs, err = w.subscribe(p.NC)
			return err
		},
		OnStop: func(ctx context.Context) error {
			// Drain of the connection is handled by ProvideNatsClient.
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			return nil
		},
	})
}

func dateLayout(cfg config.BookingConfig) string {
	if cfg.DateLayout == "" {
		return "02 Jan 2006"
	}
	return cfg.DateLayout
}

// mailer is satisfied by *email.Client.
type mailer interface {
	Enabled() bool
	Send(ctx context.Context, m email.Message) error
}

// appointmentWorker sends follow-up mail and SMS for appointment events.
// Failures are logged and never retried.
type appointmentWorker struct {
	db       *repo.Client
	ledger   ledger.Service
	notifier notification.Service
	mail     mailer
	currency string
	layout   string
	appName  string
}

func (w *appointmentWorker) subscribe(nc *nats.Conn) ([]*nats.Subscription, error) {
	handlers := []struct {
		subject string
		handle  func(ctx context.Context, subject string, data []byte) error
	}{
		{events.Wildcard(constants.SubjectAppointmentCreated), w.handleCreated},
		{events.Wildcard(constants.SubjectAppointmentStatusChanged), w.handleStatusChanged},
	}

	subs := make([]*nats.Subscription, 0, len(handlers))
	for _, h := range handlers {
		sub, err := nc.Subscribe(h.subject, func(msg *nats.Msg) {
			ctx, cancel := context.WithTimeout(context.Background(), workerTimeout)
			defer cancel()
			if err := h.handle(ctx, msg.Subject, msg.Data); err != nil {
				slog.Warn("appointment_worker: handler failed",
					"subject", msg.Subject,
					"request_id", msg.Header.Get(events.HeaderRequestID),
					"err", err,
				)
			}
		})
		if err != nil {
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			return nil, fmt.Errorf("subscribe %s: %w", h.subject, err)
		}
		subs = append(subs, sub)
	}
	slog.Info("appointment_worker: started", "subscriptions", len(subs))
	return subs, nil
}

// ---------------------------------------------------------------------------
// appointment created -> email the doctor
// ---------------------------------------------------------------------------

func (w *appointmentWorker) handleCreated(ctx context.Context, subject string, data []byte) error {
	key, ok := events.SubjectKey(subject, constants.SubjectAppointmentCreated)
	if !ok {
		return fmt.Errorf("unexpected subject %q", subject)
	}
	doctorID, err := uuid.Parse(key)
	if err != nil {
		return fmt.Errorf("doctor id: %w", err)
	}

	if !w.mail.Enabled() {
		slog.Debug("appointment_worker: email disabled, skipping doctor notice", "doctor_id", doctorID)
		return nil
	}

	appt, err := w.ledger.Get(ctx, strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("load appointment: %w", err)
	}
	if appt.DoctorID != doctorID {
		return fmt.Errorf("appointment %s does not belong to doctor %s", appt.AppointmentID, doctorID)
	}

	doctor, err := w.db.Doctor.GetByID(ctx, appt.DoctorID)
	if err != nil {
		return fmt.Errorf("load doctor: %w", err)
	}
	patient, err := w.db.Patient.GetByID(ctx, appt.PatientID)
	if err != nil {
		return fmt.Errorf("load patient: %w", err)
	}
	specialty := doctor.Specialty
	if sp, err := w.db.Specialty.GetByID(ctx, appt.DiseaseID); err == nil {
		specialty = sp.Name
	}

	msg := email.BuildNewAppointmentEmail(email.NewAppointmentData{
		DoctorName:    doctor.Name,
		DoctorEmail:   doctor.Email,
		PatientName:   patient.Name,
		AppointmentID: appt.AppointmentID,
		Specialty:     specialty,
		Date:          appt.AppointmentDate.Format(w.layout),
		Amount:        appt.Amount,
		Currency:      w.currency,
		AppName:       w.appName,
	})
	if err := w.mail.Send(ctx, msg); err != nil {
		return err
	}
	slog.Info("appointment_worker: doctor notified", "appointment_id", appt.AppointmentID, "doctor_id", doctor.ID)
	return nil
}

// ---------------------------------------------------------------------------
// status changed -> SMS the patient
// ---------------------------------------------------------------------------

func (w *appointmentWorker) handleStatusChanged(ctx context.Context, subject string, data []byte) error {
	var ev ledger.StatusChange
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode status change: %w", err)
	}
	if key, ok := events.SubjectKey(subject, constants.SubjectAppointmentStatusChanged); !ok || key != ev.AppointmentID {
		return fmt.Errorf("subject %q does not match appointment %q", subject, ev.AppointmentID)
	}

	patient, err := w.db.Patient.GetByID(ctx, ev.PatientID)
	if err != nil {
		return fmt.Errorf("load patient: %w", err)
	}
	doctorName := "your doctor"
	if d, err := w.db.Doctor.GetByID(ctx, ev.DoctorID); err == nil {
		doctorName = d.Name
	}

	text := fmt.Sprintf("Your appointment %s with %s is now %s.", ev.AppointmentID, doctorName, ev.To)
	ack, err := w.notifier.Send(ctx, patient.Phone, text)
	if err != nil {
		return err
	}
	slog.Info("appointment_worker: patient notified",
		"appointment_id", ev.AppointmentID,
		"status", ev.To,
		"channel", ack.Channel,
		"delivered", ack.Delivered,
	)
	return nil
}
