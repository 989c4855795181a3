package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// KVRepo is a string key-value table. It satisfies profile.KV.
type KVRepo struct {
	db  *sql.DB
	now func() time.Time
}

// Get returns the value for key. found is false when the key is absent.
func (r *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	query, args := sqlite.Select("value").
		From(entsql.Table("kv")).
		Where(entsql.EQ("key", key)).
		Query()

	var v string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return v, true, nil
}

// Set overwrites the value for key.
func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	query, args := sqlite.Insert("kv").
		Columns("key", "value", "updated_at").
		Values(key, value, r.now().UTC().UnixMilli()).
		OnConflict(entsql.ConflictColumns("key"), entsql.ResolveWithNewValues()).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}
