package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/service/ledger"
	"github.com/Alijeyrad/medibook_backend/internal/service/notification"
	"github.com/Alijeyrad/medibook_backend/pkg/email"
	"github.com/Alijeyrad/medibook_backend/pkg/events"
)

type fakeMailer struct {
	enabled bool
	sent    []email.Message
}

func (m *fakeMailer) Enabled() bool { return m.enabled }

func (m *fakeMailer) Send(_ context.Context, msg email.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

type fakeNotifier struct {
	phones   []string
	messages []string
}

func (n *fakeNotifier) Send(_ context.Context, to, msg string) (*notification.Ack, error) {
	n.phones = append(n.phones, to)
	n.messages = append(n.messages, msg)
	return &notification.Ack{Recipient: to, Channel: notification.ChannelLog, SentAt: time.Now()}, nil
}

type workerFixture struct {
	w        *appointmentWorker
	led      ledger.Service
	mail     *fakeMailer
	notifier *fakeNotifier
	doctor   *repo.Doctor
	patient  *repo.Patient
	appt     *repo.Appointment
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	ctx := context.Background()
	db := repo.NewMemoryClient()

	sp := &repo.Specialty{Name: "Cardiology"}
	require.NoError(t, db.Specialty.Create(ctx, sp))
	p := &repo.Patient{Name: "John Doe", Phone: "9876543210"}
	require.NoError(t, db.Patient.Create(ctx, p))
	d := &repo.Doctor{Name: "Dr. Sarah Johnson", Email: "sarah@hospital.com", Specialty: "Cardiology"}
	require.NoError(t, db.Doctor.Create(ctx, d))

	led := ledger.New(db, nil, config.LedgerConfig{})
	appt, err := led.Create(ctx, ledger.CreateRequest{
		AppointmentID:   "3210-APPT-123456",
		PatientID:       p.ID,
		DoctorID:        d.ID,
		DiseaseID:       sp.ID,
		Amount:          200,
		TransactionID:   "txn_1",
		AppointmentDate: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	mail := &fakeMailer{enabled: true}
	notifier := &fakeNotifier{}
	return &workerFixture{
		w: &appointmentWorker{
			db:       db,
			ledger:   led,
			notifier: notifier,
			mail:     mail,
			currency: "INR",
			layout:   "02 Jan 2006",
		},
		led:      led,
		mail:     mail,
		notifier: notifier,
		doctor:   d,
		patient:  p,
		appt:     appt,
	}
}

func TestHandleCreated_EmailsDoctor(t *testing.T) {
	f := newWorkerFixture(t)

	err := f.w.handleCreated(context.Background(), events.AppointmentCreated(f.doctor.ID), []byte(f.appt.AppointmentID))
	require.NoError(t, err)

	require.Len(t, f.mail.sent, 1)
	msg := f.mail.sent[0]
	assert.Equal(t, []string{"sarah@hospital.com"}, msg.To)
	assert.Contains(t, msg.Subject, "3210-APPT-123456")
	assert.Contains(t, msg.TextBody, "John Doe")
	assert.Contains(t, msg.TextBody, "01 Mar 2025")
	assert.Contains(t, msg.TextBody, "200 INR")
}

func TestHandleCreated_MailDisabled(t *testing.T) {
	f := newWorkerFixture(t)
	f.mail.enabled = false

	err := f.w.handleCreated(context.Background(), events.AppointmentCreated(f.doctor.ID), []byte(f.appt.AppointmentID))
	require.NoError(t, err)
	assert.Empty(t, f.mail.sent)
}

func TestHandleCreated_WrongDoctor(t *testing.T) {
	f := newWorkerFixture(t)

	err := f.w.handleCreated(context.Background(), events.AppointmentCreated(uuid.New()), []byte(f.appt.AppointmentID))
	require.Error(t, err)
	assert.Empty(t, f.mail.sent)
}

func TestHandleCreated_BadSubject(t *testing.T) {
	f := newWorkerFixture(t)

	err := f.w.handleCreated(context.Background(), "medibook.appointment.created.not-a-uuid", []byte(f.appt.AppointmentID))
	require.Error(t, err)
	assert.Empty(t, f.mail.sent)
}

func TestHandleStatusChanged_SMSPatient(t *testing.T) {
	f := newWorkerFixture(t)
	data, err := json.Marshal(ledger.StatusChange{
		AppointmentID: f.appt.AppointmentID,
		DoctorID:      f.doctor.ID,
		PatientID:     f.patient.ID,
		From:          repo.StatusPending,
		To:            repo.StatusConfirmed,
	})
	require.NoError(t, err)

	err = f.w.handleStatusChanged(context.Background(), events.AppointmentStatusChanged(f.appt.AppointmentID), data)
	require.NoError(t, err)

	require.Equal(t, []string{"9876543210"}, f.notifier.phones)
	assert.Equal(t, "Your appointment 3210-APPT-123456 with Dr. Sarah Johnson is now confirmed.", f.notifier.messages[0])
}

func TestHandleStatusChanged_SubjectMismatch(t *testing.T) {
	f := newWorkerFixture(t)
	data, err := json.Marshal(ledger.StatusChange{AppointmentID: "other", PatientID: f.patient.ID})
	require.NoError(t, err)

	err = f.w.handleStatusChanged(context.Background(), events.AppointmentStatusChanged(f.appt.AppointmentID), data)
	require.Error(t, err)
	assert.Empty(t, f.notifier.phones)
}

func TestHandleStatusChanged_BadPayload(t *testing.T) {
	f := newWorkerFixture(t)
	err := f.w.handleStatusChanged(context.Background(), events.AppointmentStatusChanged("x"), []byte("{"))
	require.Error(t, err)
}

func TestDateLayout(t *testing.T) {
	assert.Equal(t, "02 Jan 2006", dateLayout(config.BookingConfig{}))
	assert.Equal(t, time.RFC3339, dateLayout(config.BookingConfig{DateLayout: time.RFC3339}))
}
