package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range Tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table.Name,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table.Name, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Purpose: "chat", Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	events, err := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events after reopen = %d, want 1", len(events))
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestLLMEventsAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "mindmap-root", InputTokens: 1000, OutputTokens: 200, LatencyMs: 900, Success: true, RequestBody: `{"a":1}`, ResponseBody: `{"b":2}`},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "chat", InputTokens: 100, OutputTokens: 50, LatencyMs: 300, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-pro", Purpose: "chat", InputTokens: 120, OutputTokens: 60, LatencyMs: 500, Success: false, ErrorMessage: "rate limited"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Model != "gemini-2.5-pro" {
		t.Errorf("newest model = %q, want gemini-2.5-pro", all[0].Model)
	}
	if all[0].Success {
		t.Error("newest event should be a failure")
	}
	if all[0].Sequence <= all[1].Sequence {
		t.Errorf("sequence not descending: %d, %d", all[0].Sequence, all[1].Sequence)
	}

	chats, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "chat", Limit: 1})
	if err != nil {
		t.Fatalf("query chat: %v", err)
	}
	if len(chats) != 1 || chats[0].Purpose != "chat" {
		t.Fatalf("chat query = %+v", chats)
	}

	future, err := repo.QueryLLMEvents(ctx, QueryOpts{From: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("query future: %v", err)
	}
	if len(future) != 0 {
		t.Errorf("future events = %d, want 0", len(future))
	}

	first := all[2]
	got, err := repo.GetLLMEvent(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.RequestBody != `{"a":1}` || got.ResponseBody != `{"b":2}` {
		t.Errorf("get = %+v", got)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing event")
	}
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, e := range []LLMRequestEventData{
		{Model: "m1", Purpose: "chat", InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true},
		{Model: "m1", Purpose: "chat", InputTokens: 20, OutputTokens: 5, LatencyMs: 300, Success: true},
		{Model: "m2", Purpose: "quiz", InputTokens: 7, OutputTokens: 3, LatencyMs: 50, Success: true},
	} {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purposes = %d, want 2", len(byPurpose))
	}
	chat := byPurpose[0]
	if chat.Purpose != "chat" || chat.Calls != 2 || chat.InputTokens != 30 || chat.OutputTokens != 10 || chat.AvgLatencyMs != 200 {
		t.Errorf("chat usage = %+v", chat)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("by model: %v", err)
	}
	if len(byModel) != 2 || byModel[1].Model != "m2" || byModel[1].InputTokens != 7 {
		t.Errorf("model usage = %+v", byModel)
	}
}

func TestProfileUsers(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProfileRepo()
	ctx := context.Background()

	err := repo.CreateUser(ctx, UserRecord{UID: "u1", Email: " Alice@Example.com ", DisplayName: "Alice", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = repo.CreateUser(ctx, UserRecord{UID: "u2", Email: "alice@example.com"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate email err = %v, want ErrDuplicate", err)
	}

	u, err := repo.UserByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("by email: %v", err)
	}
	if u.UID != "u1" || u.Provider != "password" || u.DisplayName != "Alice" {
		t.Errorf("user = %+v", u)
	}

	if _, err := repo.UserByUID(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing uid err = %v, want ErrNotFound", err)
	}
}

func TestProfileCompletedDedupes(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProfileRepo()
	ctx := context.Background()

	if err := repo.CreateUser(ctx, UserRecord{UID: "u1", Email: "a@b.c"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, tc := range []struct {
		id      int
		wantNew bool
	}{{3, true}, {1, true}, {3, false}} {
		added, err := repo.AddCompleted(ctx, "u1", tc.id)
		if err != nil {
			t.Fatalf("add %d: %v", tc.id, err)
		}
		if added != tc.wantNew {
			t.Errorf("add %d: new = %v, want %v", tc.id, added, tc.wantNew)
		}
	}

	ids, err := repo.Completed(ctx, "u1")
	if err != nil {
		t.Fatalf("completed: %v", err)
	}
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
		t.Errorf("completed = %v, want [3 1]", ids)
	}
}

func TestProfileCompletedRequiresUser(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.ProfileRepo().AddCompleted(context.Background(), "ghost", 1); err == nil {
		t.Fatal("expected foreign key failure for unknown user")
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProfileRepo()
	ctx := context.Background()

	sess, err := repo.Session(ctx)
	if err != nil || sess != nil {
		t.Fatalf("initial session = %v, %v; want nil", sess, err)
	}

	if err := repo.SetSession(ctx, Session{UID: "u1", Backend: "local"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.SetSession(ctx, Session{UID: "u2", Backend: "redis"}); err != nil {
		t.Fatalf("set again: %v", err)
	}
	sess, err = repo.Session(ctx)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if sess == nil || sess.UID != "u2" || sess.Backend != "redis" {
		t.Fatalf("session = %+v", sess)
	}

	if err := repo.ClearSession(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	sess, _ = repo.Session(ctx)
	if sess != nil {
		t.Errorf("session after clear = %+v", sess)
	}
}

func TestMindMapSnapshots(t *testing.T) {
	s := openTestStore(t)
	repo := s.MindMapRepo()
	ctx := context.Background()

	snap, err := repo.Latest(ctx, "abc")
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot when none exist")
	}

	for i, label := range []string{"v1", "v2", "v3"} {
		err := repo.Save(ctx, &MindMapSnapshot{
			Digest: "abc", DocumentName: "cours.pdf", RootLabel: label, NodeCount: i + 1, Tree: []byte(`{"id":"root"}`),
		})
		if err != nil {
			t.Fatalf("save %s: %v", label, err)
		}
	}
	if err := repo.Save(ctx, &MindMapSnapshot{Digest: "def", DocumentName: "autre.pdf", RootLabel: "other"}); err != nil {
		t.Fatalf("save other: %v", err)
	}

	snap, err = repo.Latest(ctx, "abc")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap.RootLabel != "v3" || string(snap.Tree) != `{"id":"root"}` {
		t.Errorf("latest = %+v", snap)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Digest != "def" || list[1].RootLabel != "v3" {
		t.Errorf("list = %+v", list)
	}

	if err := repo.Prune(ctx, "abc", 1); err != nil {
		t.Fatalf("prune: %v", err)
	}
	var count int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM mindmap_snapshots WHERE digest = 'abc'").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("remaining = %d, want 1", count)
	}
	snap, _ = repo.Latest(ctx, "abc")
	if snap == nil || snap.RootLabel != "v3" {
		t.Errorf("latest after prune = %+v", snap)
	}
}
