package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jask/teamperf/internal/domain"
	"github.com/jask/teamperf/internal/timer"
)

var (
	// ErrStopped is returned when the Store loop is no longer running.
	ErrStopped   = errors.New("store stopped")
	errNilAction = errors.New("nil action")
)

// Transition describes one applied action.
type Transition struct {
	Seq     uint64
	Action  Action
	State   domain.State
	Effects []Effect
	Elapsed time.Duration
}

// Observer is called on the loop goroutine after every applied action, once
// the action's effects have run.
type Observer func(Transition)

// barrier is queued by Flush and never reaches the reducer.
type barrier struct{ done chan struct{} }

func (barrier) ActionName() string { return "barrier" }

// timerTick is queued by a running timer. It reaches the reducer as a Tick
// only while its generation is still the active one for id.
type timerTick struct {
	id   timer.ID
	gen  uint64
	time float64
}

func (timerTick) ActionName() string { return "timer-tick" }

// StoreOptions configures a Store. Zero fields take defaults.
type StoreOptions struct {
	Log       *zap.Logger
	QueueSize int
	Verbose   *VerboseFlag
	Timers    *timer.Manager
}

// Store owns the state and applies actions one at a time on the goroutine
// running Run. Actions are applied in the order they were queued; timer
// ticks join the same queue as every other action, so they interleave in
// submission order. Ticks from a timer cancelled while they waited in the
// queue are dropped.
type Store struct {
	reducer *Reducer
	log     *zap.Logger
	verbose *VerboseFlag
	timers  *timer.Manager
	queue   chan Action
	done    chan struct{}
	stop    sync.Once

	// Owned by the loop goroutine.
	gen    uint64
	active map[timer.ID]uint64

	mu        sync.RWMutex
	state     domain.State
	observers []Observer
	seq       uint64

	pendingMu sync.Mutex
	pending   map[*time.Timer]func()
}

func NewStore(initial domain.State, reducer *Reducer, opts StoreOptions) *Store {
	if reducer == nil {
		reducer = &Reducer{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Verbose == nil {
		opts.Verbose = &VerboseFlag{}
	}
	if opts.Timers == nil {
		opts.Timers = timer.NewManager(opts.Log)
	}
	return &Store{
		reducer: reducer,
		log:     opts.Log,
		verbose: opts.Verbose,
		timers:  opts.Timers,
		queue:   make(chan Action, opts.QueueSize),
		done:    make(chan struct{}),
		state:   initial,
		active:  make(map[timer.ID]uint64),
		pending: make(map[*time.Timer]func()),
	}
}

// State returns the latest snapshot. Safe from any goroutine.
func (s *Store) State() domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Verbose exposes the trace flag to presentation code.
func (s *Store) Verbose() *VerboseFlag { return s.verbose }

// Subscribe registers o. Call before Run.
func (s *Store) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Send queues a for the loop. It blocks while the queue is full and fails
// once the loop has stopped. A Tick sent here is applied whether or not the
// clock timer is running.
func (s *Store) Send(a Action) error {
	return s.enqueue(context.Background(), a)
}

func (s *Store) enqueue(ctx context.Context, a Action) error {
	if a == nil {
		return errNilAction
	}
	select {
	case <-s.done:
		return ErrStopped
	default:
	}
	select {
	case s.queue <- a:
		return nil
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits until every action queued before it has been applied.
func (s *Store) Flush(ctx context.Context) error {
	b := barrier{done: make(chan struct{})}
	if err := s.enqueue(ctx, b); err != nil {
		return err
	}
	select {
	case <-b.done:
		return nil
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run applies queued actions until ctx is done. Timers and pending delayed
// effects are settled before it returns.
func (s *Store) Run(ctx context.Context) error {
	defer s.shutdown()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case a := <-s.queue:
			switch a := a.(type) {
			case barrier:
				close(a.done)
			case timerTick:
				if s.active[a.id] != a.gen {
					s.log.Debug("stale tick dropped", zap.String("timer", string(a.id)), zap.Uint64("gen", a.gen))
					continue
				}
				s.apply(Tick{Time: a.time})
			default:
				s.apply(a)
			}
		}
	}
}

func (s *Store) apply(a Action) {
	start := time.Now()
	next, effects := s.reducer.Apply(s.State(), a)
	elapsed := time.Since(start)

	s.mu.Lock()
	s.state = next
	s.seq++
	tr := Transition{Seq: s.seq, Action: a, State: next, Effects: effects, Elapsed: elapsed}
	observers := s.observers
	s.mu.Unlock()

	// Effects first: observers of an Increment must already see verbose on.
	for _, e := range effects {
		s.run(e)
	}
	for _, o := range observers {
		o(tr)
	}
}

func (s *Store) run(e Effect) {
	switch e := e.(type) {
	case StartTimer:
		s.gen++
		id, gen := e.ID, s.gen
		s.active[id] = gen
		s.timers.Start(id, e.Interval, func(ctx context.Context, at time.Time) {
			tick := timerTick{id: id, gen: gen, time: float64(at.UnixNano()) / float64(time.Second)}
			if err := s.enqueue(ctx, tick); err != nil {
				s.log.Debug("tick dropped", zap.Error(err))
			}
		})
	case CancelTimer:
		delete(s.active, e.ID)
		s.timers.Cancel(e.ID)
	case SetVerbose:
		if e.After <= 0 {
			s.verbose.Set(e.Enabled)
			return
		}
		s.schedule(e.After, func() { s.verbose.Set(e.Enabled) })
	default:
		s.log.Warn("unknown effect", zap.String("effect", e.EffectName()))
	}
}

func (s *Store) schedule(after time.Duration, fn func()) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	var t *time.Timer
	t = time.AfterFunc(after, func() {
		s.pendingMu.Lock()
		_, ok := s.pending[t]
		delete(s.pending, t)
		s.pendingMu.Unlock()
		if ok {
			fn()
		}
	})
	s.pending[t] = fn
}

func (s *Store) shutdown() {
	s.stop.Do(func() {
		close(s.done)
		s.timers.Close()

		s.pendingMu.Lock()
		pending := s.pending
		s.pending = make(map[*time.Timer]func())
		s.pendingMu.Unlock()
		// Entries still in the map have not run; their callbacks will find
		// the map empty and skip.
		for t, fn := range pending {
			t.Stop()
			fn()
		}
	})
}
