package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/teamperf/internal/database"
)

// MaintenanceService houses destructive journal operations surfaced through the CLI.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes every recorded run. It keeps the schema intact.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		for _, t := range []string{"entries", "runs"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}

// Prune keeps the newest keep runs and deletes the rest with their entries.
func (s *MaintenanceService) Prune(ctx context.Context, keep int) (int64, error) {
	if s.DB == nil {
		return 0, fmt.Errorf("maintenance: db not configured")
	}
	if keep < 0 {
		keep = 0
	}
	var removed int64
	err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		const stale = `SELECT id FROM runs ORDER BY started_at DESC LIMIT -1 OFFSET ?`
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE run_id IN (`+stale+`)`, keep); err != nil {
			return fmt.Errorf("prune entries: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id IN (`+stale+`)`, keep)
		if err != nil {
			return fmt.Errorf("prune runs: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}
