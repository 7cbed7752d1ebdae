package repository

import "time"

// Run represents one Store session recorded in the journal.
type Run struct {
	ID         string
	Label      string
	StartedAt  time.Time
	FinishedAt *time.Time
	Entries    int
}

// Entry represents one applied action.
type Entry struct {
	RunID       string
	Seq         uint64
	Action      string
	Path        string
	Clock       float64
	TimerOn     bool
	EntityCount int
	Effects     string
	Elapsed     time.Duration
	AppliedAt   time.Time
}
