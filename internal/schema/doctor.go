package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Doctor logs in with an email address and belongs to one specialty.
type Doctor struct {
	ent.Schema
}

func (Doctor) Mixin() []ent.Mixin {
	return []ent.Mixin{
		UUIDV7Mixin{},
		CreatedAtMixin{},
	}
}

func (Doctor) Fields() []ent.Field {
	return []ent.Field{
		field.String("name").
			NotEmpty(),

		field.String("email").
			Unique(),

		field.String("specialty").
			Comment("Specialty name, matched against specialties.name"),

		field.String("password_hash").
			Sensitive(),

		field.String("experience").
			Default(""),

		field.Float("rating").
			Default(0),

		field.Text("image").
			Default("").
			Comment("Public URL of the profile image"),
	}
}

func (Doctor) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("specialty", "rating"),
	}
}
