package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/pkg/events"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	AppointmentID   string
	PatientID       uuid.UUID
	DoctorID        uuid.UUID
	DiseaseID       uuid.UUID
	Amount          int64
	TransactionID   string
	AppointmentDate time.Time
}

// StatusChange is the payload of the status changed event.
type StatusChange struct {
	AppointmentID string                 `json:"appointment_id"`
	DoctorID      uuid.UUID              `json:"doctor_id"`
	PatientID     uuid.UUID              `json:"patient_id"`
	From          repo.AppointmentStatus `json:"from"`
	To            repo.AppointmentStatus `json:"to"`
	At            time.Time              `json:"at"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*repo.Appointment, error)
	Get(ctx context.Context, appointmentID string) (*repo.Appointment, error)
	GetByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*repo.DoctorAppointment, error)
	GetByPatient(ctx context.Context, patientID uuid.UUID) ([]*repo.PatientAppointment, error)
	UpdateStatus(ctx context.Context, appointmentID string, status repo.AppointmentStatus) (*repo.Appointment, error)
	ExportDoctorAppointments(ctx context.Context, doctorID uuid.UUID) ([]byte, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

// transitions lists the statuses reachable from each status under the
// strict policy. Terminal statuses have no entry.
var transitions = map[repo.AppointmentStatus][]repo.AppointmentStatus{
	repo.StatusPending:   {repo.StatusConfirmed, repo.StatusCompleted, repo.StatusCancelled},
	repo.StatusConfirmed: {repo.StatusCompleted, repo.StatusCancelled},
}

// CanTransition reports whether from may move to to under the strict policy.
func CanTransition(from, to repo.AppointmentStatus) bool {
	return from == to || slices.Contains(transitions[from], to)
}

type ledgerService struct {
	db     *repo.Client
	bus    events.Publisher
	strict bool
	now    func() time.Time
}

func New(db *repo.Client, bus events.Publisher, cfg config.LedgerConfig) Service {
	return &ledgerService{
		db:     db,
		bus:    bus,
		strict: !strings.EqualFold(cfg.TransitionPolicy, config.TransitionPolicyPermissive),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *ledgerService) Create(ctx context.Context, req CreateRequest) (*repo.Appointment, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	now := s.now()
	appt := &repo.Appointment{
		AppointmentID:   req.AppointmentID,
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		DiseaseID:       req.DiseaseID,
		Amount:          req.Amount,
		TransactionID:   req.TransactionID,
		Status:          repo.StatusPending,
		AppointmentDate: req.AppointmentDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if appt.AppointmentDate.IsZero() {
		appt.AppointmentDate = now
	}

	if err := s.db.Appointment.Create(ctx, appt); err != nil {
		switch {
		case repo.IsConflict(err):
			return nil, fmt.Errorf("%w: %s", ErrConflict, repo.ConstraintName(err))
		case repo.IsInvalidReference(err):
			return nil, fmt.Errorf("%w: %s", ErrValidationFailed, repo.ConstraintName(err))
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return appt, nil
}

func validateCreate(req CreateRequest) error {
	var missing []string
	if strings.TrimSpace(req.AppointmentID) == "" {
		missing = append(missing, "appointment_id")
	}
	if req.PatientID == uuid.Nil {
		missing = append(missing, "patient_id")
	}
	if req.DoctorID == uuid.Nil {
		missing = append(missing, "doctor_id")
	}
	if req.DiseaseID == uuid.Nil {
		missing = append(missing, "disease_id")
	}
	if strings.TrimSpace(req.TransactionID) == "" {
		missing = append(missing, "transaction_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidationFailed, strings.Join(missing, ", "))
	}
	if req.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidationFailed)
	}
	return nil
}

func (s *ledgerService) Get(ctx context.Context, appointmentID string) (*repo.Appointment, error) {
	appt, err := s.db.Appointment.Get(ctx, appointmentID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

func (s *ledgerService) GetByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*repo.DoctorAppointment, error) {
	out, err := s.db.Appointment.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list doctor appointments: %w", err)
	}
	return out, nil
}

func (s *ledgerService) GetByPatient(ctx context.Context, patientID uuid.UUID) ([]*repo.PatientAppointment, error) {
	out, err := s.db.Appointment.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}
	return out, nil
}

func (s *ledgerService) UpdateStatus(ctx context.Context, appointmentID string, status repo.AppointmentStatus) (*repo.Appointment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, status)
	}

	current, err := s.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if s.strict && !CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}

	var updated *repo.Appointment
	if s.strict {
		updated, err = s.db.Appointment.SwapStatus(ctx, appointmentID, current.Status, status)
	} else {
		updated, err = s.db.Appointment.UpdateStatus(ctx, appointmentID, status)
	}
	if err != nil {
		switch {
		case repo.IsNotFound(err):
			return nil, ErrNotFound
		case repo.IsStatusChanged(err):
			return s.afterLostRace(ctx, appointmentID, current.Status, status)
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	s.publishStatusChange(ctx, StatusChange{
		AppointmentID: updated.AppointmentID,
		DoctorID:      updated.DoctorID,
		PatientID:     updated.PatientID,
		From:          current.Status,
		To:            updated.Status,
		At:            updated.UpdatedAt,
	})
	return updated, nil
}

// afterLostRace resolves a strict update whose expected status was changed
// by a concurrent writer. Reaching the requested status anyway is a no-op.
func (s *ledgerService) afterLostRace(ctx context.Context, appointmentID string, from, want repo.AppointmentStatus) (*repo.Appointment, error) {
	latest, err := s.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if latest.Status == want {
		return latest, nil
	}
	return nil, fmt.Errorf("%w: %s -> %s (now %s)", ErrInvalidTransition, from, want, latest.Status)
}

func (s *ledgerService) publishStatusChange(ctx context.Context, ev StatusChange) {
	if s.bus == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, events.AppointmentStatusChanged(ev.AppointmentID), data); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("ledger: publish status change failed", "appointment_id", ev.AppointmentID, "err", err)
	}
}
