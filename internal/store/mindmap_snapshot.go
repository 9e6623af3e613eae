package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// mindMapRepo implements MindMapRepo. Snapshots are append-only; Prune is
// the only way rows leave the table.
type mindMapRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

type mindMapRow struct {
	ID           int    `sql:"id"`
	Sequence     int64  `sql:"sequence"`
	Timestamp    int64  `sql:"timestamp"`
	Digest       string `sql:"digest"`
	DocumentName string `sql:"document_name"`
	RootLabel    string `sql:"root_label"`
	NodeCount    int    `sql:"node_count"`
	Tree         []byte `sql:"tree"`
}

func (row mindMapRow) snapshot() MindMapSnapshot {
	return MindMapSnapshot{
		ID:           row.ID,
		Sequence:     row.Sequence,
		Timestamp:    time.UnixMilli(row.Timestamp),
		Digest:       row.Digest,
		DocumentName: row.DocumentName,
		RootLabel:    row.RootLabel,
		NodeCount:    row.NodeCount,
		Tree:         row.Tree,
	}
}

func (r *mindMapRepo) Save(ctx context.Context, snap *MindMapSnapshot) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	now := time.Now()

	ins := builder().Insert(MindmapSnapshotsTable.Name).
		Columns("sequence", "timestamp", "digest", "document_name", "root_label", "node_count", "tree").
		Values(seqNum, now.UnixMilli(), snap.Digest, snap.DocumentName, snap.RootLabel, snap.NodeCount, snap.Tree)
	res, err := exec(ctx, r.drv, ins)
	if err != nil {
		return fmt.Errorf("save mind map snapshot: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		snap.ID = int(id)
	}
	snap.Sequence = seqNum
	snap.Timestamp = now
	return nil
}

func (r *mindMapRepo) Latest(ctx context.Context, digest string) (*MindMapSnapshot, error) {
	sel := builder().Select("id", "sequence", "timestamp", "digest", "document_name", "root_label", "node_count", "tree").
		From(entsql.Table(MindmapSnapshotsTable.Name)).
		Where(entsql.EQ("digest", digest)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1)

	var rows []mindMapRow
	if err := scanAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query mind map snapshot: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	snap := rows[0].snapshot()
	return &snap, nil
}

func (r *mindMapRepo) List(ctx context.Context) ([]MindMapSnapshot, error) {
	newest := builder().Select(entsql.Max("sequence")).
		From(entsql.Table(MindmapSnapshotsTable.Name)).
		GroupBy("digest")

	sel := builder().Select("id", "sequence", "timestamp", "digest", "document_name", "root_label", "node_count").
		From(entsql.Table(MindmapSnapshotsTable.Name)).
		Where(entsql.In("sequence", newest)).
		OrderBy(entsql.Desc("sequence"))

	var rows []mindMapRow
	if err := scanAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("list mind map snapshots: %w", err)
	}
	out := make([]MindMapSnapshot, len(rows))
	for i, row := range rows {
		out[i] = row.snapshot()
	}
	return out, nil
}

func (r *mindMapRepo) Prune(ctx context.Context, digest string, keep int) error {
	if keep < 0 {
		keep = 0
	}
	kept := builder().Select("sequence").
		From(entsql.Table(MindmapSnapshotsTable.Name)).
		Where(entsql.EQ("digest", digest)).
		OrderBy(entsql.Desc("sequence")).
		Limit(keep)

	del := builder().Delete(MindmapSnapshotsTable.Name).
		Where(entsql.And(
			entsql.EQ("digest", digest),
			entsql.NotIn("sequence", kept),
		))
	if _, err := exec(ctx, r.drv, del); err != nil {
		return fmt.Errorf("prune mind map snapshots: %w", err)
	}
	return nil
}
