package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo on the analytics_events table. Rows are
// ordered by their autoincrement id, which is the append order.
type eventRepo struct {
	db    *sql.DB
	limit int
}

func (r *eventRepo) Append(ctx context.Context, events []EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	for _, ev := range events {
		props := ev.Properties
		if props == nil {
			props = []byte("{}")
		}
		query, args := builder().Insert(tableEvents).
			Columns("event_id", "name", "session_id", "user_id", "timestamp", "properties").
			Values(ev.ID, ev.Name, ev.SessionID, ev.UserID, ev.Timestamp.UnixMilli(), props).
			OnConflict(entsql.ConflictColumns("event_id"), entsql.DoNothing()).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert event %s: %w", ev.ID, err)
		}
	}

	if err := r.trim(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// trim evicts the oldest rows beyond the cap.
func (r *eventRepo) trim(ctx context.Context, tx *sql.Tx) error {
	if r.limit <= 0 {
		return nil
	}
	query, args := builder().Select("id").
		From(entsql.Table(tableEvents)).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Offset(r.limit).
		Query()

	var threshold int64
	err := tx.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("query events for trim: %w", err)
	}

	query, args = builder().Delete(tableEvents).
		Where(entsql.LTE("id", threshold)).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("trim events: %w", err)
	}
	return nil
}

func (r *eventRepo) Query(ctx context.Context, opts QueryOpts) ([]EventRecord, error) {
	sel := builder().Select("event_id", "name", "session_id", "user_id", "timestamp", "properties").
		From(entsql.Table(tableEvents)).
		OrderBy(entsql.Desc("id"))

	var preds []*entsql.Predicate
	if opts.Name != "" {
		preds = append(preds, entsql.EQ("name", opts.Name))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UnixMilli()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var (
			ev EventRecord
			ms int64
		)
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.SessionID, &ev.UserID, &ms, &ev.Properties); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Timestamp = time.UnixMilli(ms)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	slices.Reverse(out)
	return out, nil
}

func (r *eventRepo) Count(ctx context.Context) (int, error) {
	query, args := builder().Select(entsql.Count("*")).
		From(entsql.Table(tableEvents)).
		Query()
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
