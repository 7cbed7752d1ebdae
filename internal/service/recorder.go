package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/teamperf/internal/core"
	"github.com/jask/teamperf/internal/database"
	"github.com/jask/teamperf/internal/database/repository"
)

// Recorder writes every applied action to the journal. It only writes;
// nothing reads the journal back into a Store.
type Recorder struct {
	Runs    *repository.RunRepo
	Entries *repository.EntryRepo
	Log     *zap.Logger

	mu    sync.Mutex
	ctx   context.Context
	runID string
	fails int
}

// Begin opens a new run and returns its id.
func (r *Recorder) Begin(ctx context.Context, label string) (string, error) {
	id := uuid.NewString()
	if err := r.Runs.Create(ctx, repository.Run{ID: id, Label: label, StartedAt: database.Now()}); err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	r.mu.Lock()
	r.ctx, r.runID = ctx, id
	r.mu.Unlock()
	return id, nil
}

// Observe implements core.Observer.
func (r *Recorder) Observe(tr core.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runID == "" {
		return
	}
	path, leaf := core.PathOf(tr.Action)
	name := tr.Action.ActionName()
	if len(path) > 0 && leaf != nil {
		name = leaf.ActionName()
	}
	effects := make([]string, len(tr.Effects))
	for i, e := range tr.Effects {
		effects[i] = e.EffectName()
	}
	entry := repository.Entry{
		RunID:       r.runID,
		Seq:         tr.Seq,
		Action:      name,
		Path:        path.String(),
		Clock:       tr.State.Clock,
		TimerOn:     tr.State.TimerOn,
		EntityCount: tr.State.EntityCount(),
		Effects:     strings.Join(effects, ","),
		Elapsed:     tr.Elapsed,
		AppliedAt:   database.Now(),
	}
	if err := r.Entries.Append(r.ctx, entry); err != nil {
		r.fails++
		r.logger().Warn("journal append failed", zap.Uint64("seq", tr.Seq), zap.Error(err))
	}
}

// Failures counts entries that could not be written.
func (r *Recorder) Failures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fails
}

// End closes the current run.
func (r *Recorder) End(ctx context.Context) error {
	r.mu.Lock()
	id := r.runID
	r.runID = ""
	r.mu.Unlock()
	if id == "" {
		return nil
	}
	if err := r.Runs.Finish(ctx, id, database.Now()); err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	return nil
}

func (r *Recorder) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}
