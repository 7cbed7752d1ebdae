package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jask/teamperf/internal/domain"
	"github.com/jask/teamperf/internal/scope"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startStore(t *testing.T, r *Reducer, initial domain.State) (*Store, func()) {
	t.Helper()
	s := NewStore(initial, r, StoreOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	return s, func() {
		cancel()
		require.ErrorIs(t, <-done, context.Canceled)
	}
}

func TestStoreAppliesActionsInSubmissionOrder(t *testing.T) {
	s, stop := startStore(t, &Reducer{}, domain.SmallState())
	defer stop()

	var mu sync.Mutex
	var names []string
	var seqs []uint64
	s.Subscribe(func(tr Transition) {
		mu.Lock()
		defer mu.Unlock()
		names = append(names, tr.Action.ActionName())
		seqs = append(seqs, tr.Seq)
	})

	ctx := context.Background()
	require.NoError(t, s.Send(Tick{Time: 10}))
	require.NoError(t, s.Send(Increment{}))
	require.NoError(t, s.Send(ToggleState{}))
	require.NoError(t, s.Send(Increment{}))
	require.NoError(t, s.Flush(ctx))

	state := s.State()
	// ToggleState restarts the clock; only the last Increment remains.
	require.Equal(t, 1.0, state.Clock)
	require.Equal(t, 172, state.EntityCount())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"tick", "increment", "toggle-state", "increment"}, names)
	require.Equal(t, []uint64{1, 2, 3, 4}, seqs)
}

func TestStoreTimerDeliversTicksUntilCancelled(t *testing.T) {
	s, stop := startStore(t, &Reducer{TimerInterval: 2 * time.Millisecond}, domain.SmallState())
	defer stop()

	var mu sync.Mutex
	ticks := 0
	s.Subscribe(func(tr Transition) {
		if _, ok := tr.Action.(Tick); ok {
			mu.Lock()
			ticks++
			mu.Unlock()
		}
	})
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return ticks
	}

	require.NoError(t, s.Send(ToggleTimer{}))
	require.Eventually(t, func() bool { return count() >= 3 }, 2*time.Second, time.Millisecond)
	require.Greater(t, s.State().Clock, 1e9, "clock should hold wall time in seconds")

	require.NoError(t, s.Send(ToggleTimer{}))
	require.NoError(t, s.Flush(context.Background()))
	require.False(t, s.State().TimerOn)

	after := count()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.Flush(context.Background()))
	require.LessOrEqual(t, count()-after, 1, "at most one in-flight tick after cancel")
}

func TestIncrementVerboseLifecycle(t *testing.T) {
	s, stop := startStore(t, &Reducer{VerboseReset: 15 * time.Millisecond}, domain.SmallState())
	defer stop()

	require.False(t, s.Verbose().Enabled())
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Send(Increment{}))
	}
	require.NoError(t, s.Flush(context.Background()))
	require.True(t, s.Verbose().Enabled(), "verbose enabled immediately")
	require.Equal(t, 3.0, s.State().Clock-domain.SmallState().Clock)

	require.Eventually(t, func() bool { return !s.Verbose().Enabled() }, time.Second, time.Millisecond)
}

func TestShutdownRunsPendingVerboseResets(t *testing.T) {
	s := NewStore(domain.SmallState(), &Reducer{VerboseReset: time.Hour}, StoreOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.NoError(t, s.Send(Increment{}))
	require.NoError(t, s.Flush(context.Background()))
	require.True(t, s.Verbose().Enabled())

	cancel()
	<-done
	require.False(t, s.Verbose().Enabled(), "pending disable must run on shutdown")
	require.ErrorIs(t, s.Send(Increment{}), ErrStopped)
	require.ErrorIs(t, s.Flush(context.Background()), ErrStopped)
}

func TestShutdownStopsRunningTimer(t *testing.T) {
	s := NewStore(domain.SmallState(), &Reducer{TimerInterval: time.Millisecond}, StoreOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.NoError(t, s.Send(ToggleTimer{}))
	require.NoError(t, s.Flush(context.Background()))
	require.Eventually(t, func() bool { return s.State().Clock > 0 }, time.Second, time.Millisecond)

	cancel()
	<-done
	// goleak in TestMain catches a producer that outlives Run.
}

func TestQueuedTicksDroppedOnceTimerCancelled(t *testing.T) {
	slow := &Reducer{
		TimerInterval: 2 * time.Millisecond,
		Leaves: map[scope.Level]LeafReducer{
			scope.Team: func(e domain.Entity, _ Leaf) domain.Entity {
				time.Sleep(100 * time.Millisecond)
				return e
			},
		},
	}
	s, stop := startStore(t, slow, domain.SmallState())
	defer stop()

	var mu sync.Mutex
	var names []string
	s.Subscribe(func(tr Transition) {
		mu.Lock()
		names = append(names, tr.Action.ActionName())
		mu.Unlock()
	})

	require.NoError(t, s.Send(ToggleTimer{}))
	require.NoError(t, s.Send(TeamAction("t0", Leaf{Op: "slow"})))
	require.NoError(t, s.Send(ToggleTimer{}))
	require.NoError(t, s.Flush(context.Background()))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.Flush(context.Background()))
	require.False(t, s.State().TimerOn)

	mu.Lock()
	applied := append([]string(nil), names...)
	mu.Unlock()

	toggles, after := 0, 0
	for _, name := range applied {
		switch {
		case name == "toggle-timer":
			toggles++
		case name == "tick" && toggles == 2:
			after++
		}
	}
	require.Equal(t, 2, toggles, "%v", applied)
	require.Zero(t, after, "timer ticks applied after cancel: %v", applied)

	// A caller's own Tick is applied with the timer stopped.
	require.NoError(t, s.Send(Tick{Time: 7}))
	require.NoError(t, s.Flush(context.Background()))
	require.Equal(t, 7.0, s.State().Clock)
}

func TestObserversSeeVerboseOnIncrement(t *testing.T) {
	s, stop := startStore(t, &Reducer{VerboseReset: time.Hour}, domain.SmallState())
	defer stop()

	seen := make(chan bool, 1)
	s.Subscribe(func(tr Transition) {
		if _, ok := tr.Action.(Increment); ok {
			seen <- s.Verbose().Enabled()
		}
	})

	require.NoError(t, s.Send(Increment{}))
	require.NoError(t, s.Flush(context.Background()))
	require.True(t, <-seen, "verbose must be on when observers see the Increment")
}
