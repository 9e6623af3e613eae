package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{LlmRequestEventsColumns[2]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LlmRequestEventsColumns[5]}},
			{Name: "llmrequestevent_success", Columns: []*schema.Column{LlmRequestEventsColumns[9]}},
		},
	}

	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		{Name: "uid", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "display_name", Type: field.TypeString, Default: ""},
		{Name: "password_hash", Type: field.TypeString, Default: ""},
		{Name: "provider", Type: field.TypeString, Default: "password"},
		{Name: "created_at", Type: field.TypeInt64},
	}
	// UsersTable holds the schema information for the "users" table.
	UsersTable = &schema.Table{
		Name:       "users",
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
	}

	// CompletedCapsulesColumns holds the columns for the "completed_capsules" table.
	CompletedCapsulesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "capsule_id", Type: field.TypeInt},
		{Name: "completed_at", Type: field.TypeInt64},
		{Name: "user_uid", Type: field.TypeString},
	}
	// CompletedCapsulesTable holds the schema information for the "completed_capsules" table.
	CompletedCapsulesTable = &schema.Table{
		Name:       "completed_capsules",
		Columns:    CompletedCapsulesColumns,
		PrimaryKey: []*schema.Column{CompletedCapsulesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "completed_capsules_users_completions",
				Columns:    []*schema.Column{CompletedCapsulesColumns[3]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "completedcapsule_user_uid_capsule_id", Unique: true, Columns: []*schema.Column{CompletedCapsulesColumns[3], CompletedCapsulesColumns[1]}},
		},
	}

	// SessionsColumns holds the columns for the "sessions" table.
	SessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "uid", Type: field.TypeString},
		{Name: "backend", Type: field.TypeString},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	// SessionsTable holds the schema information for the "sessions" table.
	// It has at most one row (id = 1): the signed-in account.
	SessionsTable = &schema.Table{
		Name:       "sessions",
		Columns:    SessionsColumns,
		PrimaryKey: []*schema.Column{SessionsColumns[0]},
	}

	// MindmapSnapshotsColumns holds the columns for the "mindmap_snapshots" table.
	MindmapSnapshotsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "digest", Type: field.TypeString},
		{Name: "document_name", Type: field.TypeString},
		{Name: "root_label", Type: field.TypeString},
		{Name: "node_count", Type: field.TypeInt},
		{Name: "tree", Type: field.TypeBytes},
	}
	// MindmapSnapshotsTable holds the schema information for the "mindmap_snapshots" table.
	MindmapSnapshotsTable = &schema.Table{
		Name:       "mindmap_snapshots",
		Columns:    MindmapSnapshotsColumns,
		PrimaryKey: []*schema.Column{MindmapSnapshotsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "mindmapsnapshot_digest", Columns: []*schema.Column{MindmapSnapshotsColumns[3]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		LlmRequestEventsTable,
		UsersTable,
		CompletedCapsulesTable,
		SessionsTable,
		MindmapSnapshotsTable,
	}
)

func init() {
	CompletedCapsulesTable.ForeignKeys[0].RefTable = UsersTable
}
