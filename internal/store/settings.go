package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const settingsTable = "settings"

// settingsRepo implements SettingsRepo as an upserted key-value table.
type settingsRepo struct {
	drv *entsql.Driver
}

func (r *settingsRepo) GetBool(ctx context.Context, key string) (bool, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("value").
		From(b.Table(settingsTable)).
		Where(entsql.EQ("key", key)).
		Limit(1).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return false, fmt.Errorf("query setting %s: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return false, rows.Err()
	}
	var raw string
	if err := rows.Scan(&raw); err != nil {
		return false, fmt.Errorf("scan setting %s: %w", key, err)
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse setting %s: %w", key, err)
	}
	return v, nil
}

func (r *settingsRepo) SetBool(ctx context.Context, key string, v bool) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(settingsTable).
		Columns("key", "value", "updated_at").
		Values(key, strconv.FormatBool(v), time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

func (r *settingsRepo) Clear(ctx context.Context) error {
	query, args := entsql.Dialect(dialect.SQLite).Delete(settingsTable).Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("clear settings: %w", err)
	}
	return nil
}
