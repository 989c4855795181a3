package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// timeNow is the default repository clock.
var timeNow = time.Now

// sequenceCounter hands out the global monotonic sequence shared by every
// event table, so events of different types can be ordered against each
// other. The mutex serializes within the process; RETURNING makes the
// increment atomic in the database.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter wraps db. The global_sequence table is created by the
// first migration.
func newSequenceCounter(db *sql.DB) *sequenceCounter {
	return &sequenceCounter{db: db}
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	query, args := sqlite.Update("global_sequence").
		Set("next_val", entsql.Expr("next_val + 1")).
		Where(entsql.EQ("id", 1)).
		Returning("next_val").
		Query()

	var next int64
	if err := sc.db.QueryRowContext(ctx, query, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return next - 1, nil
}

// eventRepo implements EventRepo with raw SQL.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
	now func() time.Time
}

// insert stamps a row for table with the next sequence and the current
// time, then writes cols/vals after them.
func (r *eventRepo) insert(ctx context.Context, table string, cols []string, vals ...any) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	query, args := sqlite.Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, cols...)...).
		Values(append([]any{seq, r.now().UTC().UnixMilli()}, vals...)...).
		Query()
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

// selectFrom starts a newest-first query on table filtered by o.
func (o QueryOpts) selectFrom(table string, cols ...string) *entsql.Selector {
	s := sqlite.Select(cols...).From(entsql.Table(table))
	if o.After > 0 {
		s.Where(entsql.GT("sequence", o.After))
	}
	if o.Before > 0 {
		s.Where(entsql.LT("sequence", o.Before))
	}
	if !o.From.IsZero() {
		s.Where(entsql.GTE("timestamp", o.From.UTC().UnixMilli()))
	}
	if !o.To.IsZero() {
		s.Where(entsql.LTE("timestamp", o.To.UTC().UnixMilli()))
	}
	s.OrderBy(entsql.Desc("sequence"))
	if o.Limit > 0 {
		s.Limit(o.Limit)
	}
	return s
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
