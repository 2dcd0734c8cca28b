package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Patient logs in with a phone number.
type Patient struct {
	ent.Schema
}

func (Patient) Mixin() []ent.Mixin {
	return []ent.Mixin{
		UUIDV7Mixin{},
		CreatedAtMixin{},
	}
}

func (Patient) Fields() []ent.Field {
	return []ent.Field{
		field.String("name").
			NotEmpty(),

		field.String("phone").
			Unique().
			MaxLen(32).
			Comment("Normalized national number"),

		field.String("password_hash").
			Sensitive(),
	}
}
