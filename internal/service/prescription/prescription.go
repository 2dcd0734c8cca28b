package prescription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/service/identity"
	"github.com/Alijeyrad/medibook_backend/internal/service/ledger"
	"github.com/Alijeyrad/medibook_backend/internal/service/notification"
)

// TimingOptions and DurationOptions are the choices offered to doctors.
// Free text is accepted as well.
var (
	TimingOptions = []string{
		"Morning 8:00 AM",
		"Afternoon 1:00 PM",
		"Evening 6:00 PM",
		"Night 9:00 PM",
	}
	DurationOptions = []string{"3 days", "5 days", "7 days", "10 days", "15 days"}
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Item struct {
	MedicineName string `json:"medicine_name"`
	Timing       string `json:"timing"`
	Duration     string `json:"duration"`
}

type PrescribeRequest struct {
	AppointmentID string
	// PatientPhone defaults to the phone of the appointment's patient.
	PatientPhone string
	Items        []Item
}

type Ack struct {
	AppointmentID string                   `json:"appointment_id"`
	Persisted     int                      `json:"persisted"`
	Notified      int                      `json:"notified"`
	Schedules     []*repo.MedicineSchedule `json:"schedules"`
}

// ReminderMessage is the SMS sent for one prescribed item.
func ReminderMessage(it Item, doctorName string) string {
	return fmt.Sprintf("Reminder: Take your medicine %s at %s for %s. Prescribed by %s",
		it.MedicineName, it.Timing, it.Duration, doctorName)
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Prescribe persists and notifies item by item. On partial failure it
	// returns the Ack so far together with a *PartialFailureError.
	Prescribe(ctx context.Context, sess *identity.Session, req PrescribeRequest) (*Ack, error)
	// ListSchedules is open to the appointment's doctor and patient.
	ListSchedules(ctx context.Context, sess *identity.Session, appointmentID string) ([]*repo.MedicineSchedule, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type prescriptionService struct {
	db       *repo.Client
	ledger   ledger.Service
	notifier notification.Service
	abort    bool
}

func New(db *repo.Client, led ledger.Service, notifier notification.Service, cfg config.PrescriptionConfig) Service {
	return &prescriptionService{
		db:       db,
		ledger:   led,
		notifier: notifier,
		abort:    !strings.EqualFold(cfg.FailurePolicy, config.FailurePolicyContinue),
	}
}

func (s *prescriptionService) Prescribe(ctx context.Context, sess *identity.Session, req PrescribeRequest) (*Ack, error) {
	if !sess.IsDoctor() {
		return nil, ErrNotDoctor
	}
	items, err := validateItems(req.Items)
	if err != nil {
		return nil, err
	}

	appt, err := s.appointment(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != sess.SubjectID {
		return nil, ErrForbidden
	}

	patientPhone := strings.TrimSpace(req.PatientPhone)
	if patientPhone == "" {
		p, err := s.db.Patient.GetByID(ctx, appt.PatientID)
		if err != nil {
			return nil, fmt.Errorf("get patient: %w", err)
		}
		patientPhone = p.Phone
	}

	ack := &Ack{AppointmentID: appt.AppointmentID}
	var failures []ItemFailure

	for i, it := range items {
		row := &repo.MedicineSchedule{
			ID:            repo.NewID(),
			AppointmentID: appt.AppointmentID,
			MedicineName:  it.MedicineName,
			Timing:        it.Timing,
			Duration:      it.Duration,
			PatientPhone:  patientPhone,
		}
		if err := s.db.MedicineSchedule.Create(ctx, row); err != nil {
			failures = append(failures, ItemFailure{Index: i, Medicine: it.MedicineName, Stage: StagePersist, Err: err})
			if s.abort {
				break
			}
			continue
		}
		ack.Persisted++
		ack.Schedules = append(ack.Schedules, row)

		if _, err := s.notifier.Send(ctx, patientPhone, ReminderMessage(it, sess.Name)); err != nil {
			failures = append(failures, ItemFailure{Index: i, Medicine: it.MedicineName, Stage: StageNotify, Err: err})
			if s.abort {
				break
			}
			continue
		}
		ack.Notified++
	}

	if len(failures) > 0 {
		slog.Warn("prescription: items failed",
			"appointment_id", appt.AppointmentID,
			"persisted", ack.Persisted,
			"notified", ack.Notified,
			"failed", len(failures),
		)
		return ack, &PartialFailureError{
			AppointmentID: appt.AppointmentID,
			Persisted:     ack.Persisted,
			Notified:      ack.Notified,
			Failures:      failures,
		}
	}
	return ack, nil
}

func (s *prescriptionService) ListSchedules(ctx context.Context, sess *identity.Session, appointmentID string) ([]*repo.MedicineSchedule, error) {
	if sess == nil {
		return nil, ErrForbidden
	}
	appt, err := s.appointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	switch {
	case sess.IsDoctor() && appt.DoctorID == sess.SubjectID:
	case sess.IsPatient() && appt.PatientID == sess.SubjectID:
	default:
		return nil, ErrForbidden
	}

	out, err := s.db.MedicineSchedule.ListByAppointment(ctx, appt.AppointmentID)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return out, nil
}

func (s *prescriptionService) appointment(ctx context.Context, id string) (*repo.Appointment, error) {
	appt, err := s.ledger.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return appt, nil
}

func validateItems(in []Item) ([]Item, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: at least one medicine is required", ErrValidationFailed)
	}
	out := make([]Item, len(in))
	for i, it := range in {
		it.MedicineName = strings.TrimSpace(it.MedicineName)
		it.Timing = strings.TrimSpace(it.Timing)
		it.Duration = strings.TrimSpace(it.Duration)
		if it.MedicineName == "" || it.Timing == "" || it.Duration == "" {
			return nil, fmt.Errorf("%w: item %d needs medicine name, timing and duration", ErrValidationFailed, i)
		}
		out[i] = it
	}
	return out, nil
}
