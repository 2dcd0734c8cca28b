// Package events publishes appointment lifecycle events on NATS.
package events

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/Alijeyrad/medibook_backend/pkg/constants"
	"github.com/Alijeyrad/medibook_backend/pkg/reqctx"
)

const HeaderRequestID = "X-Request-Id"

type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NATSPublisher publishes core NATS messages. A nil connection turns every
// publish into a no-op so the service runs without a broker.
type NATSPublisher struct {
	nc *nats.Conn
}

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if p == nil || p.nc == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := nats.NewMsg(subject)
	msg.Data = data
	if id := reqctx.RequestIDFromContext(ctx); id != "" {
		msg.Header.Set(HeaderRequestID, id)
	}
	return p.nc.PublishMsg(msg)
}

// AppointmentCreated is keyed on the doctor so a worker can notify them.
func AppointmentCreated(doctorID uuid.UUID) string {
	return constants.SubjectAppointmentCreated + "." + doctorID.String()
}

func AppointmentStatusChanged(appointmentID string) string {
	return constants.SubjectAppointmentStatusChanged + "." + appointmentID
}

// Wildcard returns the subscription subject matching every key under prefix.
func Wildcard(prefix string) string {
	return prefix + ".*"
}

// SubjectKey returns the trailing token of subject when it sits directly
// under prefix.
func SubjectKey(subject, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(subject, prefix+".")
	if !ok || rest == "" || strings.Contains(rest, ".") {
		return "", false
	}
	return rest, true
}

// Recorder keeps published messages in memory.
type Recorder struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

type Message struct {
	Subject string
	Data    []byte
}

func (r *Recorder) Publish(ctx context.Context, subject string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Messages = append(r.Messages, Message{Subject: subject, Data: append([]byte(nil), data...)})
	return nil
}

func (r *Recorder) Published() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.Messages...)
}
