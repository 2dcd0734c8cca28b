package prescription

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/service/identity"
	"github.com/Alijeyrad/medibook_backend/internal/service/ledger"
	"github.com/Alijeyrad/medibook_backend/internal/service/notification"
)

// journal records persist and notify steps in the order they happen.
type journal struct {
	steps []string
}

type journalStore struct {
	repo.MedicineScheduleStore
	j      *journal
	failOn map[string]bool
}

func (s *journalStore) Create(ctx context.Context, m *repo.MedicineSchedule) error {
	if s.failOn[m.MedicineName] {
		return errors.New("disk full")
	}
	if err := s.MedicineScheduleStore.Create(ctx, m); err != nil {
		return err
	}
	s.j.steps = append(s.j.steps, "persist:"+m.MedicineName)
	return nil
}

type journalNotifier struct {
	j        *journal
	failOn   map[int]bool
	calls    int
	messages []string
	phones   []string
}

func (n *journalNotifier) Send(ctx context.Context, to, msg string) (*notification.Ack, error) {
	call := n.calls
	n.calls++
	if n.failOn[call] {
		return nil, notification.ErrDeliveryFailed
	}
	n.messages = append(n.messages, msg)
	n.phones = append(n.phones, to)
	n.j.steps = append(n.j.steps, fmt.Sprintf("notify:%d", call))
	return &notification.Ack{Recipient: to, Delivered: true}, nil
}

type fixture struct {
	db       *repo.Client
	store    *journalStore
	notifier *journalNotifier
	journal  *journal
	doctor   *identity.Session
	patient  *identity.Session
	apptID   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := repo.NewMemoryClient()

	sp := &repo.Specialty{Name: "Cardiology"}
	require.NoError(t, db.Specialty.Create(ctx, sp))
	p := &repo.Patient{Name: "John Doe", Phone: "9876543210"}
	require.NoError(t, db.Patient.Create(ctx, p))
	d := &repo.Doctor{Name: "Dr. Sarah Johnson", Email: "sarah@hospital.com", Specialty: "Cardiology"}
	require.NoError(t, db.Doctor.Create(ctx, d))
	require.NoError(t, db.Appointment.Create(ctx, &repo.Appointment{
		AppointmentID: "3210-APPT-123456",
		PatientID:     p.ID,
		DoctorID:      d.ID,
		DiseaseID:     sp.ID,
		Amount:        200,
		TransactionID: "txn_1",
		Status:        repo.StatusPending,
	}))

	j := &journal{}
	store := &journalStore{MedicineScheduleStore: db.MedicineSchedule, j: j, failOn: map[string]bool{}}
	db.MedicineSchedule = store

	return &fixture{
		db:       db,
		store:    store,
		notifier: &journalNotifier{j: j, failOn: map[int]bool{}},
		journal:  j,
		doctor:   &identity.Session{Role: identity.RoleDoctor, SubjectID: d.ID, Name: d.Name},
		patient:  &identity.Session{Role: identity.RolePatient, SubjectID: p.ID, Name: p.Name, Phone: p.Phone},
		apptID:   "3210-APPT-123456",
	}
}

func (f *fixture) service(policy string) Service {
	return New(f.db, ledger.New(f.db, nil, config.LedgerConfig{}), f.notifier, config.PrescriptionConfig{FailurePolicy: policy})
}

var twoItems = []Item{
	{MedicineName: "Aspirin", Timing: "Morning 8:00 AM", Duration: "5 days"},
	{MedicineName: "Metformin", Timing: "Night 9:00 PM", Duration: "10 days"},
}

func TestPrescribe_TwoItemsInOrder(t *testing.T) {
	f := newFixture(t)
	svc := f.service("")

	ack, err := svc.Prescribe(context.Background(), f.doctor, PrescribeRequest{AppointmentID: f.apptID, Items: twoItems})
	require.NoError(t, err)

	assert.Equal(t, 2, ack.Persisted)
	assert.Equal(t, 2, ack.Notified)
	require.Len(t, ack.Schedules, 2)
	assert.Equal(t, []string{"persist:Aspirin", "notify:0", "persist:Metformin", "notify:1"}, f.journal.steps)
	assert.Equal(t, []string{
		"Reminder: Take your medicine Aspirin at Morning 8:00 AM for 5 days. Prescribed by Dr. Sarah Johnson",
		"Reminder: Take your medicine Metformin at Night 9:00 PM for 10 days. Prescribed by Dr. Sarah Johnson",
	}, f.notifier.messages)
	assert.Equal(t, []string{"9876543210", "9876543210"}, f.notifier.phones)

	rows, err := svc.ListSchedules(context.Background(), f.patient, f.apptID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Aspirin", rows[0].MedicineName)
	assert.Equal(t, "9876543210", rows[0].PatientPhone)
}

func TestPrescribe_ExplicitPhone(t *testing.T) {
	f := newFixture(t)
	_, err := f.service("").Prescribe(context.Background(), f.doctor, PrescribeRequest{
		AppointmentID: f.apptID,
		PatientPhone:  "9123456780",
		Items:         twoItems[:1],
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"9123456780"}, f.notifier.phones)
}

func TestPrescribe_AbortOnNotifyFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.failOn[0] = true

	ack, err := f.service(config.FailurePolicyAbort).Prescribe(context.Background(), f.doctor, PrescribeRequest{AppointmentID: f.apptID, Items: twoItems})
	require.ErrorIs(t, err, ErrPartialFailure)
	assert.ErrorIs(t, err, notification.ErrDeliveryFailed)

	var pf *PartialFailureError
	require.True(t, errors.As(err, &pf))
	assert.Equal(t, 1, pf.Persisted)
	assert.Equal(t, 0, pf.Notified)
	require.Len(t, pf.Failures, 1)
	assert.Equal(t, 0, pf.Failures[0].Index)
	assert.Equal(t, StageNotify, pf.Failures[0].Stage)

	assert.Equal(t, 1, ack.Persisted)
	assert.Equal(t, []string{"persist:Aspirin"}, f.journal.steps)
}

func TestPrescribe_AbortOnPersistFailure(t *testing.T) {
	f := newFixture(t)
	f.store.failOn["Aspirin"] = true

	_, err := f.service("").Prescribe(context.Background(), f.doctor, PrescribeRequest{AppointmentID: f.apptID, Items: twoItems})
	var pf *PartialFailureError
	require.True(t, errors.As(err, &pf))
	assert.Equal(t, StagePersist, pf.Failures[0].Stage)
	assert.Equal(t, 0, pf.Persisted)
	assert.Zero(t, f.notifier.calls)
}

func TestPrescribe_ContinuePolicy(t *testing.T) {
	f := newFixture(t)
	f.notifier.failOn[0] = true

	ack, err := f.service(config.FailurePolicyContinue).Prescribe(context.Background(), f.doctor, PrescribeRequest{AppointmentID: f.apptID, Items: twoItems})
	var pf *PartialFailureError
	require.True(t, errors.As(err, &pf))
	assert.Equal(t, 2, pf.Persisted)
	assert.Equal(t, 1, pf.Notified)
	require.Len(t, pf.Failures, 1)
	assert.Equal(t, 2, ack.Persisted)
	assert.Equal(t, []string{"persist:Aspirin", "persist:Metformin", "notify:1"}, f.journal.steps)
}

func TestPrescribe_Preconditions(t *testing.T) {
	f := newFixture(t)
	svc := f.service("")
	ctx := context.Background()
	stranger := &identity.Session{Role: identity.RoleDoctor, SubjectID: uuid.New(), Name: "Dr. Other"}

	tests := []struct {
		name string
		sess *identity.Session
		req  PrescribeRequest
		want error
	}{
		{"patient session", f.patient, PrescribeRequest{AppointmentID: f.apptID, Items: twoItems}, ErrNotDoctor},
		{"no items", f.doctor, PrescribeRequest{AppointmentID: f.apptID}, ErrValidationFailed},
		{"blank timing", f.doctor, PrescribeRequest{AppointmentID: f.apptID, Items: []Item{{MedicineName: "A", Duration: "3 days"}}}, ErrValidationFailed},
		{"unknown appointment", f.doctor, PrescribeRequest{AppointmentID: "nope", Items: twoItems}, ErrNotFound},
		{"other doctor", stranger, PrescribeRequest{AppointmentID: f.apptID, Items: twoItems}, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Prescribe(ctx, tt.sess, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.journal.steps)
}

func TestListSchedules_Access(t *testing.T) {
	f := newFixture(t)
	svc := f.service("")
	ctx := context.Background()

	_, err := svc.ListSchedules(ctx, f.doctor, f.apptID)
	assert.NoError(t, err)

	_, err = svc.ListSchedules(ctx, &identity.Session{Role: identity.RolePatient, SubjectID: uuid.New()}, f.apptID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ListSchedules(ctx, nil, f.apptID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ListSchedules(ctx, f.doctor, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOptions(t *testing.T) {
	assert.Contains(t, TimingOptions, "Evening 6:00 PM")
	assert.Contains(t, DurationOptions, "15 days")
}
