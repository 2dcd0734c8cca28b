// Package repo is the persistence layer. Each entity has a store interface
// with a Postgres implementation built on ent's SQL builder and an
// in-process implementation used by the memory driver and by tests.
package repo

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentStatuses lists every valid status in lifecycle order.
var AppointmentStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
}

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	for _, v := range AppointmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Patient struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Doctor struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Specialty    string    `json:"specialty"`
	PasswordHash string    `json:"-"`
	Experience   string    `json:"experience"`
	Rating       float64   `json:"rating"`
	Image        string    `json:"image"`
	CreatedAt    time.Time `json:"created_at"`
}

type Specialty struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type Appointment struct {
	AppointmentID   string            `json:"appointment_id"`
	PatientID       uuid.UUID         `json:"patient_id"`
	DoctorID        uuid.UUID         `json:"doctor_id"`
	DiseaseID       uuid.UUID         `json:"disease_id"`
	Amount          int64             `json:"amount"`
	TransactionID   string            `json:"transaction_id"`
	Status          AppointmentStatus `json:"status"`
	AppointmentDate time.Time         `json:"appointment_date"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// DoctorAppointment is an appointment as shown on the doctor dashboard.
type DoctorAppointment struct {
	Appointment
	PatientName   string `json:"patient_name"`
	PatientPhone  string `json:"patient_phone"`
	SpecialtyName string `json:"specialty_name"`
}

// PatientAppointment is an appointment as shown on the patient dashboard.
type PatientAppointment struct {
	Appointment
	DoctorName      string `json:"doctor_name"`
	DoctorSpecialty string `json:"doctor_specialty"`
	DoctorImage     string `json:"doctor_image"`
	SpecialtyName   string `json:"specialty_name"`
}

type MedicineSchedule struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	MedicineName  string    `json:"medicine_name"`
	Timing        string    `json:"timing"`
	Duration      string    `json:"duration"`
	PatientPhone  string    `json:"patient_phone"`
	CreatedAt     time.Time `json:"created_at"`
}

// Client groups the entity stores.
type Client struct {
	Patient          PatientStore
	Doctor           DoctorStore
	Specialty        SpecialtyStore
	Appointment      AppointmentStore
	MedicineSchedule MedicineScheduleStore

	db *sql.DB
}

// NewClient returns a Postgres-backed client. The caller keeps ownership of
// db until Close is called on the client.
func NewClient(db *sql.DB) *Client {
	return &Client{
		Patient:          &patientSQL{db: db},
		Doctor:           &doctorSQL{db: db},
		Specialty:        &specialtySQL{db: db},
		Appointment:      &appointmentSQL{db: db},
		MedicineSchedule: &medicineScheduleSQL{db: db},
		db:               db,
	}
}

// DB returns the underlying connection, or nil for the memory client.
func (c *Client) DB() *sql.DB {
	return c.db
}

func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// NewID returns a time-ordered UUID.
func NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}
