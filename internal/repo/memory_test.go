package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFixture struct {
	client    *Client
	patient   *Patient
	doctor    *Doctor
	specialty *Specialty
}

func newMemFixture(t *testing.T) memFixture {
	t.Helper()
	ctx := context.Background()
	c := NewMemoryClient()

	sp := &Specialty{Name: "Cardiology", Description: "Heart and cardiovascular system"}
	require.NoError(t, c.Specialty.Create(ctx, sp))
	p := &Patient{Name: "John Doe", Phone: "9876543210", PasswordHash: "x"}
	require.NoError(t, c.Patient.Create(ctx, p))
	d := &Doctor{Name: "Dr. Sarah Johnson", Email: "Sarah@Hospital.com", Specialty: "Cardiology", Rating: 4.8}
	require.NoError(t, c.Doctor.Create(ctx, d))

	return memFixture{client: c, patient: p, doctor: d, specialty: sp}
}

func (f memFixture) appointment(id, txn string, created time.Time) *Appointment {
	return &Appointment{
		AppointmentID:   id,
		PatientID:       f.patient.ID,
		DoctorID:        f.doctor.ID,
		DiseaseID:       f.specialty.ID,
		Amount:          200,
		TransactionID:   txn,
		Status:          StatusPending,
		AppointmentDate: created,
		CreatedAt:       created,
	}
}

func TestMemory_UniqueAndReferenceRules(t *testing.T) {
	ctx := context.Background()
	f := newMemFixture(t)

	err := f.client.Patient.Create(ctx, &Patient{Name: "Other", Phone: "9876543210"})
	assert.ErrorIs(t, err, ErrConflict)

	err = f.client.Doctor.Create(ctx, &Doctor{Name: "Dup", Email: "sarah@hospital.com"})
	assert.ErrorIs(t, err, ErrConflict)

	now := time.Now()
	require.NoError(t, f.client.Appointment.Create(ctx, f.appointment("A-1", "txn_1", now)))

	err = f.client.Appointment.Create(ctx, f.appointment("A-1", "txn_2", now))
	assert.ErrorIs(t, err, ErrConflict)

	err = f.client.Appointment.Create(ctx, f.appointment("A-2", "txn_1", now))
	assert.ErrorIs(t, err, ErrConflict)

	bad := f.appointment("A-3", "txn_3", now)
	bad.DoctorID = uuid.New()
	err = f.client.Appointment.Create(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidReference)

	err = f.client.MedicineSchedule.Create(ctx, &MedicineSchedule{AppointmentID: "nope"})
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestMemory_ListsNewestFirstWithJoins(t *testing.T) {
	ctx := context.Background()
	f := newMemFixture(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, f.client.Appointment.Create(ctx, f.appointment("A-1", "txn_1", base)))
	require.NoError(t, f.client.Appointment.Create(ctx, f.appointment("A-3", "txn_3", base.Add(2*time.Hour))))
	require.NoError(t, f.client.Appointment.Create(ctx, f.appointment("A-2", "txn_2", base.Add(time.Hour))))
	// same created_at as A-3, inserted later
	require.NoError(t, f.client.Appointment.Create(ctx, f.appointment("A-4", "txn_4", base.Add(2*time.Hour))))

	byDoctor, err := f.client.Appointment.ListByDoctor(ctx, f.doctor.ID)
	require.NoError(t, err)
	ids := make([]string, 0, len(byDoctor))
	for _, a := range byDoctor {
		ids = append(ids, a.AppointmentID)
		assert.Equal(t, "John Doe", a.PatientName)
		assert.Equal(t, "Cardiology", a.SpecialtyName)
	}
	assert.Equal(t, []string{"A-4", "A-3", "A-2", "A-1"}, ids)

	byPatient, err := f.client.Appointment.ListByPatient(ctx, f.patient.ID)
	require.NoError(t, err)
	require.Len(t, byPatient, 4)
	for i := 1; i < len(byPatient); i++ {
		assert.False(t, byPatient[i].CreatedAt.After(byPatient[i-1].CreatedAt))
	}
	assert.Equal(t, "Dr. Sarah Johnson", byPatient[0].DoctorName)
}

func TestMemory_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newMemFixture(t)
	require.NoError(t, f.client.Appointment.Create(ctx, f.appointment("A-1", "txn_1", time.Now())))

	_, err := f.client.Appointment.UpdateStatus(ctx, "missing", StatusCompleted)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.client.Appointment.UpdateStatus(ctx, "A-1", StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
}

func TestMemory_SwapStatus(t *testing.T) {
	ctx := context.Background()
	f := newMemFixture(t)
	require.NoError(t, f.client.Appointment.Create(ctx, f.appointment("A-1", "txn_1", time.Now())))

	_, err := f.client.Appointment.SwapStatus(ctx, "missing", StatusPending, StatusCompleted)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.client.Appointment.SwapStatus(ctx, "A-1", StatusPending, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	_, err = f.client.Appointment.SwapStatus(ctx, "A-1", StatusPending, StatusCancelled)
	assert.True(t, IsStatusChanged(err))

	stored, err := f.client.Appointment.Get(ctx, "A-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
}

func TestMemory_DoctorsByRating(t *testing.T) {
	ctx := context.Background()
	f := newMemFixture(t)
	require.NoError(t, f.client.Doctor.Create(ctx, &Doctor{Name: "Dr. Low", Email: "low@hospital.com", Specialty: "Cardiology", Rating: 4.1}))
	require.NoError(t, f.client.Doctor.Create(ctx, &Doctor{Name: "Dr. Top", Email: "top@hospital.com", Specialty: "Cardiology", Rating: 4.9}))
	require.NoError(t, f.client.Doctor.Create(ctx, &Doctor{Name: "Dr. Skin", Email: "skin@hospital.com", Specialty: "Dermatology", Rating: 5}))

	got, err := f.client.Doctor.ListBySpecialty(ctx, "Cardiology")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Dr. Top", got[0].Name)
	assert.Equal(t, "Dr. Sarah Johnson", got[1].Name)
	assert.Equal(t, "Dr. Low", got[2].Name)
}

func TestAppointmentStatus_Valid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, AppointmentStatus("archived").Valid())
}
