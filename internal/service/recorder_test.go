package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/teamperf/internal/core"
	"github.com/jask/teamperf/internal/database"
	"github.com/jask/teamperf/internal/database/repository"
	"github.com/jask/teamperf/internal/domain"
	"github.com/jask/teamperf/internal/scope"
)

func openJournal(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecorderJournalsStoreTransitions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db := openJournal(t)

	runs := repository.NewRunRepo(db)
	entries := repository.NewEntryRepo(db)
	rec := &Recorder{Runs: runs, Entries: entries}
	runID, err := rec.Begin(ctx, "test")
	require.NoError(t, err)

	store := core.NewStore(domain.SmallState(), &core.Reducer{Leaves: LeafReducers()}, core.StoreOptions{})
	store.Subscribe(rec.Observe)
	loopCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- store.Run(loopCtx) }()

	path := scope.Path{{Level: scope.Team, ID: "t0"}, {Level: scope.Game, ID: "g0"}, {Level: scope.Video, ID: "v0"}}
	require.NoError(t, store.Send(core.Increment{}))
	require.NoError(t, store.Send(core.ToggleState{}))
	require.NoError(t, store.Send(core.Wrap(path, core.Leaf{Op: OpRename, Value: "intro"})))
	require.NoError(t, store.Flush(ctx))
	stop()
	<-done
	require.NoError(t, rec.End(ctx))
	require.Zero(t, rec.Failures())

	got, err := entries.ListByRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.Equal(t, "increment", got[0].Action)
	require.Equal(t, "set-verbose,set-verbose", got[0].Effects)
	require.Equal(t, 1.0, got[0].Clock)
	require.Equal(t, 4, got[0].EntityCount)

	require.Equal(t, "toggle-state", got[1].Action)
	require.Equal(t, 172, got[1].EntityCount)

	require.Equal(t, "leaf:rename", got[2].Action)
	require.Equal(t, "team:t0/game:g0/video:v0", got[2].Path)
	require.Equal(t, uint64(3), got[2].Seq)

	run, err := runs.Get(ctx, runID)
	require.NoError(t, err)
	require.NotNil(t, run)
	require.Equal(t, 3, run.Entries)
	require.NotNil(t, run.FinishedAt)

	counts, err := entries.CountByAction(ctx, runID)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"increment": 1, "toggle-state": 1, "leaf:rename": 1}, counts)

	renamed := scope.Project(scope.VideoScope, store.State())
	require.Equal(t, "intro", renamed.Name)
}

func TestRecorderIgnoresTransitionsOutsideRun(t *testing.T) {
	db := openJournal(t)
	entries := repository.NewEntryRepo(db)
	rec := &Recorder{Runs: repository.NewRunRepo(db), Entries: entries}

	rec.Observe(core.Transition{Seq: 1, Action: core.Increment{}, State: domain.SmallState()})
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&n))
	require.Zero(t, n)
	require.NoError(t, rec.End(context.Background()))
}

func TestMaintenancePruneAndReset(t *testing.T) {
	ctx := context.Background()
	db := openJournal(t)
	runs := repository.NewRunRepo(db)
	entries := repository.NewEntryRepo(db)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, runs.Create(ctx, repository.Run{ID: id, StartedAt: base.Add(time.Duration(i) * time.Hour)}))
		require.NoError(t, entries.Append(ctx, repository.Entry{RunID: id, Seq: 1, Action: "tick", AppliedAt: base}))
	}

	svc := &MaintenanceService{DB: db}
	removed, err := svc.Prune(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	list, err := runs.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "c", list[0].ID)
	require.Equal(t, 1, list[0].Entries)

	require.NoError(t, svc.Reset(ctx))
	list, err = runs.List(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, list)

	missing, err := runs.Get(ctx, "a")
	require.NoError(t, err)
	require.Nil(t, missing)

	require.Error(t, (&MaintenanceService{}).Reset(ctx))
}

func TestLeafReducersRenameOnly(t *testing.T) {
	e := domain.NewEntity("v0")
	fn := LeafReducers()[scope.Video]
	require.Equal(t, "x", fn(e, core.Leaf{Op: OpRename, Value: "x"}).Name)
	require.Equal(t, e, fn(e, core.Leaf{Op: "mark"}))
}
