package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// MindMapSnapshot stores a generated concept map keyed by the sha256 of
// the source PDF. Only the newest few snapshots per document are kept.
type MindMapSnapshot struct {
	ent.Schema
}

func (MindMapSnapshot) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (MindMapSnapshot) Fields() []ent.Field {
	return []ent.Field{
		field.String("digest"),
		field.String("document_name"),
		field.String("root_label"),
		field.Int("node_count"),
		field.Bytes("tree").
			Comment("JSON-encoded node tree"),
	}
}

func (MindMapSnapshot) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("digest"),
	}
}
