package core

import (
	"fmt"

	"github.com/jask/teamperf/internal/scope"
)

// Action is anything the reducer accepts.
type Action interface {
	ActionName() string
}

// ToggleTimer starts or stops the periodic clock timer.
type ToggleTimer struct{}

// ToggleState swaps the whole tree between the small and big generators.
type ToggleState struct{}

// Tick carries a wall-clock reading in seconds since the Unix epoch.
type Tick struct {
	Time float64
}

// Increment bumps the clock by one and briefly enables verbose tracing.
type Increment struct{}

// Scoped addresses Action to the entity with ID at Level.
type Scoped struct {
	Level  scope.Level
	ID     string
	Action Action
}

// Leaf is an entity-level action. The core never interprets it; callers
// install LeafReducers to give it meaning.
type Leaf struct {
	Op    string
	Value string
}

func (ToggleTimer) ActionName() string { return "toggle-timer" }
func (ToggleState) ActionName() string { return "toggle-state" }
func (Tick) ActionName() string        { return "tick" }
func (Increment) ActionName() string   { return "increment" }
func (a Scoped) ActionName() string    { return a.Level.String() }
func (a Leaf) ActionName() string      { return "leaf:" + a.Op }

func (a Scoped) String() string {
	return fmt.Sprintf("%s(%s) -> %v", a.Level, a.ID, a.Action)
}

// TeamAction addresses a team by id.
func TeamAction(id string, a Action) Scoped { return Scoped{Level: scope.Team, ID: id, Action: a} }

// GameAction addresses a game inside the enclosing team.
func GameAction(id string, a Action) Scoped { return Scoped{Level: scope.Game, ID: id, Action: a} }

// VideoAction addresses a video inside the enclosing game.
func VideoAction(id string, a Action) Scoped { return Scoped{Level: scope.Video, ID: id, Action: a} }

// MemberAction addresses a member inside the enclosing team.
func MemberAction(id string, a Action) Scoped { return Scoped{Level: scope.Member, ID: id, Action: a} }

// Wrap nests leaf under every segment of path, outermost first.
func Wrap(path scope.Path, leaf Action) Action {
	out := leaf
	for i := len(path) - 1; i >= 0; i-- {
		out = Scoped{Level: path[i].Level, ID: path[i].ID, Action: out}
	}
	return out
}

// Unwrap peels one segment addressed at level. ok is false when a is not
// addressed at that level.
func Unwrap(a Action, level scope.Level) (id string, rest Action, ok bool) {
	s, isScoped := a.(Scoped)
	if !isScoped || s.Level != level {
		return "", nil, false
	}
	return s.ID, s.Action, true
}

// PathOf returns the id path of a and the action at its end.
func PathOf(a Action) (scope.Path, Action) {
	var path scope.Path
	for {
		s, ok := a.(Scoped)
		if !ok {
			return path, a
		}
		path = append(path, scope.Segment{Level: s.Level, ID: s.ID})
		a = s.Action
	}
}
