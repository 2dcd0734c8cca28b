package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjects(t *testing.T) {
	id := uuid.MustParse("0190a5d2-6c1e-7c4a-9f00-000000000001")
	subject := AppointmentCreated(id)
	assert.Equal(t, "medibook.appointment.created."+id.String(), subject)

	key, ok := SubjectKey(subject, "medibook.appointment.created")
	require.True(t, ok)
	assert.Equal(t, id.String(), key)

	_, ok = SubjectKey("medibook.appointment.created.a.b", "medibook.appointment.created")
	assert.False(t, ok)
	_, ok = SubjectKey("medibook.appointment.created", "medibook.appointment.created")
	assert.False(t, ok)

	assert.Equal(t, "medibook.appointment.status.3210-APPT-123456", AppointmentStatusChanged("3210-APPT-123456"))
	assert.Equal(t, "medibook.appointment.created.*", Wildcard("medibook.appointment.created"))
}

func TestNATSPublisher_NilConnIsNoop(t *testing.T) {
	var p *NATSPublisher
	assert.NoError(t, p.Publish(context.Background(), "x", nil))
	assert.NoError(t, NewNATSPublisher(nil).Publish(context.Background(), "x", []byte("y")))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	data := []byte("A-1")
	require.NoError(t, r.Publish(context.Background(), "s", data))
	data[0] = 'B'
	assert.Equal(t, []Message{{Subject: "s", Data: []byte("A-1")}}, r.Published())

	r.Err = errors.New("broker down")
	assert.Error(t, r.Publish(context.Background(), "s", nil))
}
