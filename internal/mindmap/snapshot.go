package mindmap

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/capsulemed/internal/store"
)

// SnapshotsKept is how many snapshots of one document are retained.
const SnapshotsKept = 3

// Encode serializes a tree. In-flight flags are not persisted.
func Encode(root Node) ([]byte, error) {
	return json.Marshal(root)
}

// Decode parses a tree written by Encode.
func Decode(data []byte) (Node, error) {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return Node{}, fmt.Errorf("decode mindmap: %w", err)
	}
	if root.ID != RootID {
		return Node{}, fmt.Errorf("decode mindmap: root id %q", root.ID)
	}
	return root, nil
}

// Save stores the tree for a document and prunes older snapshots of it.
func Save(ctx context.Context, repo store.MindMapRepo, digest, name string, root Node) (*store.MindMapSnapshot, error) {
	data, err := Encode(root)
	if err != nil {
		return nil, fmt.Errorf("encode mindmap: %w", err)
	}
	snap := &store.MindMapSnapshot{
		Digest:       digest,
		DocumentName: name,
		RootLabel:    root.Label,
		NodeCount:    Count(root),
		Tree:         data,
	}
	if err := repo.Save(ctx, snap); err != nil {
		return nil, err
	}
	if err := repo.Prune(ctx, digest, SnapshotsKept); err != nil {
		return nil, err
	}
	return snap, nil
}

// Load returns the latest stored tree for a document. ok is false when the
// document has none.
func Load(ctx context.Context, repo store.MindMapRepo, digest string) (root Node, ok bool, err error) {
	snap, err := repo.Latest(ctx, digest)
	if err != nil {
		return Node{}, false, err
	}
	if snap == nil {
		return Node{}, false, nil
	}
	root, err = Decode(snap.Tree)
	if err != nil {
		return Node{}, false, err
	}
	return root, true, nil
}
