package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/pkg/events"
)

type fixture struct {
	svc       *ledgerService
	db        *repo.Client
	bus       *events.Recorder
	patient   *repo.Patient
	doctor    *repo.Doctor
	specialty *repo.Specialty
	clock     time.Time
}

func newFixture(t *testing.T, policy string) *fixture {
	t.Helper()
	ctx := context.Background()
	db := repo.NewMemoryClient()

	sp := &repo.Specialty{Name: "Cardiology"}
	require.NoError(t, db.Specialty.Create(ctx, sp))
	p := &repo.Patient{Name: "John Doe", Phone: "9876543210"}
	require.NoError(t, db.Patient.Create(ctx, p))
	d := &repo.Doctor{Name: "Dr. Sarah Johnson", Email: "sarah@hospital.com", Specialty: "Cardiology"}
	require.NoError(t, db.Doctor.Create(ctx, d))

	bus := &events.Recorder{}
	f := &fixture{
		db:        db,
		bus:       bus,
		patient:   p,
		doctor:    d,
		specialty: sp,
		clock:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = New(db, bus, config.LedgerConfig{TransitionPolicy: policy}).(*ledgerService)
	f.svc.now = func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}
	return f
}

func (f *fixture) request(id, txn string) CreateRequest {
	return CreateRequest{
		AppointmentID: id,
		PatientID:     f.patient.ID,
		DoctorID:      f.doctor.ID,
		DiseaseID:     f.specialty.ID,
		Amount:        200,
		TransactionID: txn,
	}
}

func TestCreate_AssignsPending(t *testing.T) {
	f := newFixture(t, "")
	appt, err := f.svc.Create(context.Background(), f.request("3210-APPT-123456", "txn_1"))
	require.NoError(t, err)

	assert.Equal(t, repo.StatusPending, appt.Status)
	assert.Equal(t, appt.CreatedAt, appt.AppointmentDate)

	stored, err := f.svc.Get(context.Background(), "3210-APPT-123456")
	require.NoError(t, err)
	assert.Equal(t, "txn_1", stored.TransactionID)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"missing id", func(r *CreateRequest) { r.AppointmentID = " " }},
		{"missing transaction", func(r *CreateRequest) { r.TransactionID = "" }},
		{"missing patient", func(r *CreateRequest) { r.PatientID = uuid.Nil }},
		{"zero amount", func(r *CreateRequest) { r.Amount = 0 }},
		{"negative amount", func(r *CreateRequest) { r.Amount = -5 }},
		{"unknown doctor", func(r *CreateRequest) { r.DoctorID = uuid.New() }},
		{"unknown disease", func(r *CreateRequest) { r.DiseaseID = uuid.New() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request("A-1", "txn_1")
			tt.mutate(&req)
			_, err := f.svc.Create(ctx, req)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestCreate_Conflict(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.request("A-1", "txn_1"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.request("A-1", "txn_2"))
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Create(ctx, f.request("A-2", "txn_1"))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLists_NewestFirst(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	for i, id := range []string{"A-1", "A-2", "A-3"} {
		_, err := f.svc.Create(ctx, f.request(id, "txn_"+string(rune('1'+i))))
		require.NoError(t, err)
	}

	byDoctor, err := f.svc.GetByDoctor(ctx, f.doctor.ID)
	require.NoError(t, err)
	require.Len(t, byDoctor, 3)
	for i := 1; i < len(byDoctor); i++ {
		assert.False(t, byDoctor[i].CreatedAt.After(byDoctor[i-1].CreatedAt))
	}
	assert.Equal(t, "A-3", byDoctor[0].AppointmentID)
	assert.Equal(t, "John Doe", byDoctor[0].PatientName)
	assert.Equal(t, "Cardiology", byDoctor[0].SpecialtyName)

	byPatient, err := f.svc.GetByPatient(ctx, f.patient.ID)
	require.NoError(t, err)
	require.Len(t, byPatient, 3)
	for i := 1; i < len(byPatient); i++ {
		assert.False(t, byPatient[i].CreatedAt.After(byPatient[i-1].CreatedAt))
	}
	assert.Equal(t, "Dr. Sarah Johnson", byPatient[0].DoctorName)
}

func TestUpdateStatus_Idempotent(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.request("A-1", "txn_1"))
	require.NoError(t, err)

	first, err := f.svc.UpdateStatus(ctx, "A-1", repo.StatusCompleted)
	require.NoError(t, err)
	second, err := f.svc.UpdateStatus(ctx, "A-1", repo.StatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, f.bus.Published(), 1)
}

func TestUpdateStatus_UnknownAppointmentLeavesLedgerUnchanged(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.request("A-1", "txn_1"))
	require.NoError(t, err)
	before, err := f.svc.GetByDoctor(ctx, f.doctor.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, "unknown", repo.StatusCompleted)
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := f.svc.GetByDoctor(ctx, f.doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, f.bus.Published())
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	f := newFixture(t, "")
	_, err := f.svc.UpdateStatus(context.Background(), "A-1", repo.AppointmentStatus("archived"))
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestUpdateStatus_StrictPolicy(t *testing.T) {
	f := newFixture(t, config.TransitionPolicyStrict)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.request("A-1", "txn_1"))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, "A-1", repo.StatusConfirmed)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, "A-1", repo.StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.UpdateStatus(ctx, "A-1", repo.StatusCompleted)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, "A-1", repo.StatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	msgs := f.bus.Published()
	require.Len(t, msgs, 2)
	assert.Equal(t, events.AppointmentStatusChanged("A-1"), msgs[1].Subject)
	var ev StatusChange
	require.NoError(t, json.Unmarshal(msgs[1].Data, &ev))
	assert.Equal(t, repo.StatusConfirmed, ev.From)
	assert.Equal(t, repo.StatusCompleted, ev.To)
}

// interleavedStore lets another writer change the status between the
// ledger's read and its conditional write.
type interleavedStore struct {
	repo.AppointmentStore
	other repo.AppointmentStatus
}

func (s *interleavedStore) SwapStatus(ctx context.Context, id string, from, next repo.AppointmentStatus) (*repo.Appointment, error) {
	if _, err := s.AppointmentStore.UpdateStatus(ctx, id, s.other); err != nil {
		return nil, err
	}
	return s.AppointmentStore.SwapStatus(ctx, id, from, next)
}

func TestUpdateStatus_StrictLosesRace(t *testing.T) {
	f := newFixture(t, config.TransitionPolicyStrict)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.request("A-1", "txn_1"))
	require.NoError(t, err)

	f.db.Appointment = &interleavedStore{AppointmentStore: f.db.Appointment, other: repo.StatusCancelled}

	_, err = f.svc.UpdateStatus(ctx, "A-1", repo.StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := f.svc.Get(ctx, "A-1")
	require.NoError(t, err)
	assert.Equal(t, repo.StatusCancelled, stored.Status)
	assert.Empty(t, f.bus.Published())
}

func TestUpdateStatus_StrictRaceToSameStatus(t *testing.T) {
	f := newFixture(t, config.TransitionPolicyStrict)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.request("A-1", "txn_1"))
	require.NoError(t, err)

	f.db.Appointment = &interleavedStore{AppointmentStore: f.db.Appointment, other: repo.StatusCompleted}

	appt, err := f.svc.UpdateStatus(ctx, "A-1", repo.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, repo.StatusCompleted, appt.Status)
}

func TestUpdateStatus_ConcurrentTerminalUpdates(t *testing.T) {
	f := newFixture(t, config.TransitionPolicyStrict)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.request("A-1", "txn_1"))
	require.NoError(t, err)

	targets := []repo.AppointmentStatus{repo.StatusCompleted, repo.StatusCancelled}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target repo.AppointmentStatus) {
			defer wg.Done()
			_, errs[i] = f.svc.UpdateStatus(ctx, "A-1", target)
		}(i, target)
	}
	wg.Wait()

	var winners []repo.AppointmentStatus
	for i, err := range errs {
		if err == nil {
			winners = append(winners, targets[i])
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
	require.Len(t, winners, 1)

	stored, err := f.svc.Get(ctx, "A-1")
	require.NoError(t, err)
	assert.Equal(t, winners[0], stored.Status)
}

func TestUpdateStatus_PermissivePolicy(t *testing.T) {
	f := newFixture(t, config.TransitionPolicyPermissive)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.request("A-1", "txn_1"))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, "A-1", repo.StatusCompleted)
	require.NoError(t, err)
	appt, err := f.svc.UpdateStatus(ctx, "A-1", repo.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, repo.StatusPending, appt.Status)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(repo.StatusPending, repo.StatusConfirmed))
	assert.True(t, CanTransition(repo.StatusPending, repo.StatusCompleted))
	assert.True(t, CanTransition(repo.StatusConfirmed, repo.StatusCancelled))
	assert.True(t, CanTransition(repo.StatusCancelled, repo.StatusCancelled))
	assert.False(t, CanTransition(repo.StatusCompleted, repo.StatusPending))
	assert.False(t, CanTransition(repo.StatusCancelled, repo.StatusConfirmed))
}

func TestExportDoctorAppointments(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.request("A-1", "txn_1"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.request("A-2", "txn_2"))
	require.NoError(t, err)

	data, err := f.svc.ExportDoctorAppointments(ctx, f.doctor.ID)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "A-2", rows[1][0])
	assert.Equal(t, "John Doe", rows[1][1])
	assert.Equal(t, "200", rows[1][4])
	assert.Equal(t, "pending", rows[1][6])
}
