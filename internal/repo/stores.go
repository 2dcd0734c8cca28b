package repo

import (
	"context"

	"github.com/google/uuid"
)

type PatientStore interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByPhone(ctx context.Context, phone string) (*Patient, error)
}

type DoctorStore interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByEmail(ctx context.Context, email string) (*Doctor, error)
	// ListBySpecialty returns doctors of a specialty, highest rating first.
	ListBySpecialty(ctx context.Context, specialty string) ([]*Doctor, error)
	SetImage(ctx context.Context, id uuid.UUID, image string) error
}

type SpecialtyStore interface {
	Create(ctx context.Context, s *Specialty) error
	GetByID(ctx context.Context, id uuid.UUID) (*Specialty, error)
	GetByName(ctx context.Context, name string) (*Specialty, error)
	// List returns all specialties ordered by name.
	List(ctx context.Context) ([]*Specialty, error)
}

type AppointmentStore interface {
	// Create inserts a new row. It fails with ErrInvalidReference when the
	// patient, doctor or disease does not exist and ErrConflict when the
	// appointment or transaction id is taken.
	Create(ctx context.Context, a *Appointment) error
	Get(ctx context.Context, appointmentID string) (*Appointment, error)
	// ListByDoctor and ListByPatient return rows newest first.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*DoctorAppointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*PatientAppointment, error)
	UpdateStatus(ctx context.Context, appointmentID string, status AppointmentStatus) (*Appointment, error)
	// SwapStatus sets status to next only while the row still holds from.
	// It fails with ErrStatusChanged when another writer got there first.
	SwapStatus(ctx context.Context, appointmentID string, from, next AppointmentStatus) (*Appointment, error)
}

type MedicineScheduleStore interface {
	Create(ctx context.Context, m *MedicineSchedule) error
	// ListByAppointment returns rows in insertion order.
	ListByAppointment(ctx context.Context, appointmentID string) ([]*MedicineSchedule, error)
}
