package repository

import (
	"context"
	"database/sql"
	"time"
)

// RunRepo handles journal runs.
type RunRepo struct {
	db *sql.DB
}

func NewRunRepo(db *sql.DB) *RunRepo { return &RunRepo{db: db} }

func (r *RunRepo) Create(ctx context.Context, run Run) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO runs(id, label, started_at) VALUES (?, ?, ?);
	`, run.ID, run.Label, run.StartedAt)
	return err
}

func (r *RunRepo) Finish(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE runs SET finished_at = ? WHERE id = ?`, at, id)
	return err
}

// Get returns nil when the run does not exist.
func (r *RunRepo) Get(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT r.id, r.label, r.started_at, r.finished_at,
	       (SELECT COUNT(*) FROM entries e WHERE e.run_id = r.id)
	FROM runs r WHERE r.id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns runs newest first.
func (r *RunRepo) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT r.id, r.label, r.started_at, r.finished_at,
	       (SELECT COUNT(*) FROM entries e WHERE e.run_id = r.id)
	FROM runs r ORDER BY r.started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var run Run
	var finished sql.NullTime
	if err := s.Scan(&run.ID, &run.Label, &run.StartedAt, &finished, &run.Entries); err != nil {
		return Run{}, err
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return run, nil
}
