package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// CompletedCapsule marks one catalog capsule as done by a user.
type CompletedCapsule struct {
	ent.Schema
}

func (CompletedCapsule) Fields() []ent.Field {
	return []ent.Field{
		field.Int("capsule_id").
			Positive(),
		field.Int64("completed_at"),
		field.String("user_uid"),
	}
}

func (CompletedCapsule) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_uid", "capsule_id").
			Unique(),
	}
}
