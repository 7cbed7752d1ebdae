package core

import (
	"time"

	"github.com/jask/teamperf/internal/timer"
)

// ClockTimer is the single identity the periodic clock runs under.
const ClockTimer timer.ID = "clock"

const (
	DefaultTimerInterval = 30 * time.Millisecond
	DefaultVerboseReset  = 10 * time.Millisecond
)

// Effect is deferred work returned by the reducer and run by the Store.
type Effect interface {
	EffectName() string
}

// StartTimer begins delivering Tick actions every Interval.
type StartTimer struct {
	ID       timer.ID
	Interval time.Duration
}

// CancelTimer stops the timer started under ID.
type CancelTimer struct {
	ID timer.ID
}

// SetVerbose sets the verbose flag, after a delay when After is positive.
type SetVerbose struct {
	Enabled bool
	After   time.Duration
}

func (StartTimer) EffectName() string  { return "start-timer" }
func (CancelTimer) EffectName() string { return "cancel-timer" }
func (SetVerbose) EffectName() string  { return "set-verbose" }
