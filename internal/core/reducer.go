package core

import (
	"time"

	"go.uber.org/zap"

	"github.com/jask/teamperf/internal/domain"
	"github.com/jask/teamperf/internal/scope"
)

// LeafReducer gives meaning to Leaf actions at one level.
type LeafReducer func(domain.Entity, Leaf) domain.Entity

// Reducer applies actions to the root state. The zero value is usable.
type Reducer struct {
	Log           *zap.Logger
	Leaves        map[scope.Level]LeafReducer
	TimerInterval time.Duration
	VerboseReset  time.Duration
}

func (r *Reducer) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// Apply is the only mutation entry point. It never mutates s in place and
// never fails; unroutable actions return s as given.
func (r *Reducer) Apply(s domain.State, a Action) (domain.State, []Effect) {
	switch a := a.(type) {
	case ToggleTimer:
		if s.TimerOn {
			s.TimerOn = false
			return s, []Effect{CancelTimer{ID: ClockTimer}}
		}
		interval := r.TimerInterval
		if interval <= 0 {
			interval = DefaultTimerInterval
		}
		s.TimerOn = true
		return s, []Effect{StartTimer{ID: ClockTimer, Interval: interval}}

	case ToggleState:
		next := domain.SmallState()
		if s.IsSmall() {
			next = domain.BigState()
		}
		// The running timer survives the swap; the clock restarts with the tree.
		next.TimerOn = s.TimerOn
		return next, nil

	case Tick:
		s.Clock = a.Time
		return s, nil

	case Increment:
		reset := r.VerboseReset
		if reset <= 0 {
			reset = DefaultVerboseReset
		}
		s.Clock++
		return s, []Effect{SetVerbose{Enabled: true}, SetVerbose{Enabled: false, After: reset}}

	case Scoped:
		return r.routeTeam(s, a), nil

	default:
		r.logger().Debug("unmatched action at root", zap.String("action", actionName(a)))
		return s, nil
	}
}

func (r *Reducer) routeTeam(s domain.State, a Scoped) domain.State {
	id, rest, ok := Unwrap(a, scope.Team)
	if !ok {
		r.logger().Debug("action not addressed to a team", zap.Stringer("level", a.Level), zap.String("id", a.ID))
		return s
	}
	if !s.Teams.Has(id) {
		r.logger().Debug("absent id", zap.Stringer("level", scope.Team), zap.String("id", id))
		return s
	}
	p := scope.Compose(scope.Teams, scope.Key(id))
	team := p.Focus(s)
	next, changed := r.reduceEntity(scope.Team, team, rest)
	if !changed {
		return s
	}
	return p.Integrate(s, next)
}

// reduceEntity applies a to e sitting at level, descending through nested
// Scoped actions. changed is false when nothing was routed.
func (r *Reducer) reduceEntity(level scope.Level, e domain.Entity, a Action) (domain.Entity, bool) {
	switch a := a.(type) {
	case Scoped:
		if !level.Contains(a.Level) {
			r.logger().Debug("malformed action path",
				zap.Stringer("at", level), zap.Stringer("level", a.Level), zap.String("id", a.ID))
			return e, false
		}
		child, _ := scope.Child(a.Level, a.ID)
		siblings, _ := scope.Children(a.Level)
		if !siblings.Focus(e).Has(a.ID) {
			r.logger().Debug("absent id",
				zap.Stringer("level", a.Level), zap.String("id", a.ID), zap.String("parent", e.ID))
			return e, false
		}
		next, changed := r.reduceEntity(a.Level, child.Focus(e), a.Action)
		if !changed {
			return e, false
		}
		return child.Integrate(e, next), true

	case Leaf:
		fn := r.Leaves[level]
		if fn == nil {
			return e, false
		}
		return fn(e, a), true

	default:
		r.logger().Debug("unmatched action", zap.Stringer("at", level), zap.String("action", actionName(a)))
		return e, false
	}
}

func actionName(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return a.ActionName()
}
