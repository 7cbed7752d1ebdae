package repository

import (
	"context"
	"database/sql"
	"time"
)

// EntryRepo handles applied-action entries.
type EntryRepo struct {
	db *sql.DB
}

func NewEntryRepo(db *sql.DB) *EntryRepo { return &EntryRepo{db: db} }

func (r *EntryRepo) Append(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO entries(run_id, seq, action, path, clock, timer_on, entity_count, effects, elapsed_ns, applied_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, e.RunID, int64(e.Seq), e.Action, e.Path, e.Clock, e.TimerOn, e.EntityCount, e.Effects, e.Elapsed.Nanoseconds(), e.AppliedAt)
	return err
}

// ListByRun returns entries in application order.
func (r *EntryRepo) ListByRun(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT run_id, seq, action, path, clock, timer_on, entity_count, effects, elapsed_ns, applied_at
	FROM entries WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var seq, elapsed int64
		if err := rows.Scan(&e.RunID, &seq, &e.Action, &e.Path, &e.Clock, &e.TimerOn, &e.EntityCount, &e.Effects, &elapsed, &e.AppliedAt); err != nil {
			return nil, err
		}
		e.Seq = uint64(seq)
		e.Elapsed = time.Duration(elapsed)
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountByAction tallies entries of a run per action name.
func (r *EntryRepo) CountByAction(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT action, COUNT(*) FROM entries WHERE run_id = ? GROUP BY action`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		out[name] = n
	}
	return out, rows.Err()
}
