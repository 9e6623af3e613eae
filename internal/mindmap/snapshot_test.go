package mindmap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/abhisek/capsulemed/internal/store"
)

func TestEncodeDropsLoadingFlag(t *testing.T) {
	tree := sampleTree()
	tree, _ = UpdateByID(tree, "root.2", func(n Node) Node { n.Loading = true; return n })

	data, err := Encode(tree)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n, _ := Find(got, "root.2"); n.Loading {
		t.Fatal("loading flag persisted")
	}
	if Count(got) != Count(tree) {
		t.Fatalf("count = %d, want %d", Count(got), Count(tree))
	}
	if n, _ := Find(got, "root.1"); !n.Loaded || n.Label != "Anatomie du cœur" {
		t.Fatalf("root.1 = %+v", n)
	}
}

func TestDecodeRejectsForeignJSON(t *testing.T) {
	if _, err := Decode([]byte(`{"id":"c1","label":"x"}`)); err == nil {
		t.Fatal("expected error for a non-root tree")
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestSaveAndLoad(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()
	repo := s.MindMapRepo()
	ctx := context.Background()

	if _, ok, err := Load(ctx, repo, "abc"); err != nil || ok {
		t.Fatalf("load empty = %v, %v", ok, err)
	}

	for i := 0; i < SnapshotsKept+2; i++ {
		if _, err := Save(ctx, repo, "abc", "cardio.pdf", sampleTree()); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	snap, err := Save(ctx, repo, "abc", "cardio.pdf", sampleTree())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if snap.NodeCount != 5 || snap.RootLabel != "Cardiologie" {
		t.Fatalf("snapshot = %+v", snap)
	}

	root, ok, err := Load(ctx, repo, "abc")
	if err != nil || !ok {
		t.Fatalf("load = %v, %v", ok, err)
	}
	if Count(root) != 5 {
		t.Fatalf("loaded count = %d", Count(root))
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].DocumentName != "cardio.pdf" {
		t.Fatalf("list = %+v", list)
	}
}
