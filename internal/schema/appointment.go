package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"
)

// Appointment is a paid booking of a doctor by a patient.
type Appointment struct {
	ent.Schema
}

func (Appointment) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimeStampedMixin{},
	}
}

func (Appointment) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("appointment_id").
			MaxLen(64).
			Immutable().
			Comment("<last 4 phone digits>-APPT-<6 digits>"),

		field.UUID("patient_id", uuid.UUID{}).
			Comment("FK → patients.id"),

		field.UUID("doctor_id", uuid.UUID{}).
			Comment("FK → doctors.id"),

		field.UUID("disease_id", uuid.UUID{}).
			Comment("FK → specialties.id"),

		field.Int64("amount"),

		field.String("transaction_id").
			Unique().
			Comment("Gateway reference of the charge"),

		field.Enum("status").
			Values("pending", "confirmed", "completed", "cancelled").
			Default("pending"),

		field.Time("appointment_date"),
	}
}

func (Appointment) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("doctor_id", "created_at"),
		index.Fields("patient_id", "created_at"),
	}
}
