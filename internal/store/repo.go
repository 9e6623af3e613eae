package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicate is returned when a unique column already holds the value.
var ErrDuplicate = errors.New("store: duplicate")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLMRequestEventData with its identity.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage per purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage per model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns a single event, or nil when it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// UserRecord is a locally stored account.
type UserRecord struct {
	UID          string
	Email        string
	DisplayName  string
	PasswordHash string
	Provider     string
	CreatedAt    time.Time
}

// Session identifies the signed-in account and the backend that owns it.
type Session struct {
	UID     string
	Backend string
}

// ProfileRepo persists local accounts, completed capsules, and the current
// session.
type ProfileRepo interface {
	CreateUser(ctx context.Context, u UserRecord) error
	UserByEmail(ctx context.Context, email string) (*UserRecord, error)
	UserByUID(ctx context.Context, uid string) (*UserRecord, error)

	// AddCompleted records capsuleID for uid. Reports whether the row was new.
	AddCompleted(ctx context.Context, uid string, capsuleID int) (bool, error)
	Completed(ctx context.Context, uid string) ([]int, error)

	// Session returns the current session, or nil when signed out.
	Session(ctx context.Context) (*Session, error)
	SetSession(ctx context.Context, s Session) error
	ClearSession(ctx context.Context) error
}

// MindMapSnapshot is a serialized mind-map tree for one document.
type MindMapSnapshot struct {
	ID           int
	Sequence     int64
	Timestamp    time.Time
	Digest       string
	DocumentName string
	RootLabel    string
	NodeCount    int
	Tree         []byte
}

// MindMapRepo stores generated mind maps keyed by document digest.
type MindMapRepo interface {
	Save(ctx context.Context, snap *MindMapSnapshot) error

	// Latest returns the newest snapshot for digest, or nil if none exist.
	Latest(ctx context.Context, digest string) (*MindMapSnapshot, error)

	// List returns the newest snapshot of every document, newest first,
	// without tree payloads.
	List(ctx context.Context) ([]MindMapSnapshot, error)

	// Prune deletes all but the keep most recent snapshots of digest.
	Prune(ctx context.Context, digest string, keep int) error
}
