package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// User is a local account. Accounts created through a federated provider
// have no password hash.
type User struct {
	ent.Schema
}

func (User) Fields() []ent.Field {
	return []ent.Field{
		field.String("uid").
			Immutable(),
		field.String("email").
			Unique().
			Comment("Lower-cased, trimmed"),
		field.String("display_name").
			Default(""),
		field.String("password_hash").
			Default("").
			Sensitive().
			Comment("bcrypt hash"),
		field.String("provider").
			Default("password"),
		field.Int64("created_at").
			Immutable(),
	}
}
