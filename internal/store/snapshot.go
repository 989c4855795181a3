package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// snapshotRepo implements SnapshotRepo.
type snapshotRepo struct {
	db *sql.DB
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}
	query, args := sqlite.Insert("snapshots").
		Columns("sequence", "timestamp", "data").
		Values(snap.Sequence, snap.Timestamp.UTC().UnixMilli(), string(data)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context) (*Snapshot, error) {
	var (
		s    Snapshot
		ts   int64
		data string
	)
	query, args := newestSnapshots("id", "sequence", "timestamp", "data").Limit(1).Query()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.Sequence, &ts, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &s.Data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	s.Timestamp = fromMillis(ts)
	return &s, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, keep int) error {
	query, args := sqlite.Delete("snapshots").
		Where(entsql.NotIn("id", newestSnapshots("id").Limit(keep))).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

func newestSnapshots(cols ...string) *entsql.Selector {
	return sqlite.Select(cols...).
		From(entsql.Table("snapshots")).
		OrderBy(entsql.Desc("timestamp"), entsql.Desc("id"))
}
