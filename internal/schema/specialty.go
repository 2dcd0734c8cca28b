package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Specialty is the disease or department a patient books against.
type Specialty struct {
	ent.Schema
}

func (Specialty) Mixin() []ent.Mixin {
	return []ent.Mixin{
		UUIDV7Mixin{},
	}
}

func (Specialty) Fields() []ent.Field {
	return []ent.Field{
		field.String("name").
			Unique().
			NotEmpty(),

		field.Text("description").
			Default(""),
	}
}
