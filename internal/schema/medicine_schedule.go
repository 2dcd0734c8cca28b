package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// MedicineSchedule is one prescribed medicine with its reminder timing.
type MedicineSchedule struct {
	ent.Schema
}

func (MedicineSchedule) Mixin() []ent.Mixin {
	return []ent.Mixin{
		UUIDV7Mixin{},
		CreatedAtMixin{},
	}
}

func (MedicineSchedule) Fields() []ent.Field {
	return []ent.Field{
		field.String("appointment_id").
			MaxLen(64).
			Comment("FK → appointments.appointment_id, cascades on delete"),

		field.String("medicine_name").
			NotEmpty(),

		field.String("timing"),

		field.String("duration"),

		field.String("patient_phone").
			MaxLen(32),
	}
}

func (MedicineSchedule) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("appointment_id"),
	}
}
