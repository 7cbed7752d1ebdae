package core

import "sync/atomic"

// VerboseFlag gates component trace output. Increment enables it and a
// delayed effect disables it again; it affects nothing else.
type VerboseFlag struct {
	on atomic.Bool
}

func (f *VerboseFlag) Set(enabled bool) { f.on.Store(enabled) }

func (f *VerboseFlag) Enabled() bool {
	if f == nil {
		return false
	}
	return f.on.Load()
}
