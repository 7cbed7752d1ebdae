// Package timer produces periodic ticks and tracks running timers by identity.
package timer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ID is the identity token a timer is started and cancelled by.
type ID string

// Ticks starts a periodic producer and returns its stream. Each value is the
// clock reading at emission time. The stream is infinite until ctx is done,
// after which the channel is closed and never reopened.
func Ticks(ctx context.Context, interval time.Duration, now func() time.Time) <-chan time.Time {
	if now == nil {
		now = time.Now
	}
	out := make(chan time.Time)
	go func() {
		defer close(out)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			select {
			case <-ctx.Done():
				return
			case out <- now():
			}
		}
	}()
	return out
}

// EmitFunc receives each tick. ctx is cancelled when the timer is, so
// implementations that block should select on it.
type EmitFunc func(ctx context.Context, at time.Time)

type running struct {
	cancel context.CancelFunc
}

// Manager runs timers keyed by ID.
//
// Cancel stops the producer immediately. A tick that was already handed to
// emit before Cancel returned may still be observed by the receiver; no
// later tick is.
type Manager struct {
	log    *zap.Logger
	now    func() time.Time
	mu     sync.Mutex
	timers map[ID]*running
	wg     sync.WaitGroup
}

func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{log: log, now: time.Now, timers: make(map[ID]*running)}
}

// Start runs a timer under id. Starting an id that is already running
// replaces the old producer.
func (m *Manager) Start(id ID, interval time.Duration, emit EmitFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &running{cancel: cancel}

	m.mu.Lock()
	if prev, ok := m.timers[id]; ok {
		m.log.Warn("timer already running, replacing", zap.String("timer", string(id)))
		prev.cancel()
	}
	m.timers[id] = r
	m.mu.Unlock()

	m.log.Debug("timer started", zap.String("timer", string(id)), zap.Duration("interval", interval))

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.forget(id, r)
		for at := range Ticks(ctx, interval, m.now) {
			if ctx.Err() != nil {
				return
			}
			emit(ctx, at)
		}
	}()
}

func (m *Manager) forget(id ID, r *running) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timers[id] == r {
		delete(m.timers, id)
	}
	r.cancel()
}

// Cancel stops the timer under id and reports whether one was running.
func (m *Manager) Cancel(id ID) bool {
	m.mu.Lock()
	r, ok := m.timers[id]
	if ok {
		delete(m.timers, id)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	r.cancel()
	m.log.Debug("timer cancelled", zap.String("timer", string(id)))
	return true
}

// Active reports whether a timer is registered under id.
func (m *Manager) Active(id ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.timers[id]
	return ok
}

// Close cancels every timer and waits for their producers to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	for id, r := range m.timers {
		r.cancel()
		delete(m.timers, id)
	}
	m.mu.Unlock()
	m.wg.Wait()
}
