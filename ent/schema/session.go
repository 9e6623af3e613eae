package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Session holds the signed-in account. The table has at most one row.
type Session struct {
	ent.Schema
}

func (Session) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id"),
		field.String("uid"),
		field.String("backend").
			Comment("Profile backend that owns the account: local, redis"),
		field.Int64("updated_at"),
	}
}
