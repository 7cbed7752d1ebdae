package scope

import (
	"fmt"
	"strings"

	"github.com/jask/teamperf/internal/domain"
)

// Level names a depth in the tree.
type Level int

const (
	Root Level = iota
	Team
	Game
	Video
	Member
)

func (l Level) String() string {
	switch l {
	case Root:
		return "root"
	case Team:
		return "team"
	case Game:
		return "game"
	case Video:
		return "video"
	case Member:
		return "member"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel is the inverse of Level.String for addressable levels.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "team":
		return Team, nil
	case "game":
		return Game, nil
	case "video":
		return Video, nil
	case "member":
		return Member, nil
	}
	return Root, fmt.Errorf("unknown level %q", s)
}

// levelSpec is the only place depth-specific behavior lives.
type levelSpec struct {
	parent   Level
	children Projection[domain.Entity, domain.Entities]
	selected func(domain.State) string
}

var levels = map[Level]levelSpec{
	// Team has no children projection: teams hang off the root collection.
	Team:   {parent: Root, selected: func(s domain.State) string { return s.CurrentTeam }},
	Member: {parent: Team, children: ChildrenA, selected: func(s domain.State) string { return s.CurrentMember }},
	Game:   {parent: Team, children: ChildrenB, selected: func(s domain.State) string { return s.CurrentGame }},
	Video:  {parent: Game, children: ChildrenB, selected: func(s domain.State) string { return s.CurrentVideo }},
}

// Parent returns the level directly above l.
func (l Level) Parent() (Level, bool) {
	spec, ok := levels[l]
	if !ok {
		return Root, false
	}
	return spec.parent, true
}

// Contains reports whether child hangs directly below l.
func (l Level) Contains(child Level) bool {
	p, ok := child.Parent()
	return ok && p == l
}

// Segment addresses one entity at one level.
type Segment struct {
	Level Level
	ID    string
}

func (s Segment) String() string { return s.Level.String() + ":" + s.ID }

// Path is a chain of segments from a team downwards.
type Path []Segment

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/")
}

// Valid reports whether each segment sits directly below the previous one,
// starting at the root.
func (p Path) Valid() bool {
	prev := Root
	for _, seg := range p {
		if !prev.Contains(seg.Level) {
			return false
		}
		prev = seg.Level
	}
	return len(p) > 0
}

// ParsePath reads "team:t0/game:g1/video:v3".
func ParsePath(s string) (Path, error) {
	var out Path
	for _, part := range strings.Split(strings.TrimSpace(s), "/") {
		name, id, ok := strings.Cut(part, ":")
		if !ok || id == "" {
			return nil, fmt.Errorf("malformed path segment %q", part)
		}
		l, err := ParseLevel(name)
		if err != nil {
			return nil, err
		}
		out = append(out, Segment{Level: l, ID: id})
	}
	if !out.Valid() {
		return nil, fmt.Errorf("path %q does not descend from a team", s)
	}
	return out, nil
}

// Children projects a parent entity onto the collection holding level.
func Children(level Level) (Projection[domain.Entity, domain.Entities], bool) {
	spec, ok := levels[level]
	if !ok || spec.children.Focus == nil {
		return Projection[domain.Entity, domain.Entities]{}, false
	}
	return spec.children, true
}

// Child projects an entity at level's parent onto the child with id.
func Child(level Level, id string) (Projection[domain.Entity, domain.Entity], bool) {
	children, ok := Children(level)
	if !ok {
		return Projection[domain.Entity, domain.Entity]{}, false
	}
	return Compose(children, Key(id)), true
}

// At projects the root onto the entity addressed by path.
func At(path Path) (Projection[domain.State, domain.Entity], bool) {
	if !path.Valid() {
		return Projection[domain.State, domain.Entity]{}, false
	}
	p := Compose(Teams, Key(path[0].ID))
	for _, seg := range path[1:] {
		child, _ := Child(seg.Level, seg.ID)
		p = Compose(p, child)
	}
	return p, true
}

// SelectionPath follows the state's Current* ids from the root down to level.
func SelectionPath(s domain.State, level Level) Path {
	var rev Path
	for l := level; l != Root; {
		spec, ok := levels[l]
		if !ok {
			return nil
		}
		rev = append(rev, Segment{Level: l, ID: spec.selected(s)})
		l = spec.parent
	}
	out := make(Path, len(rev))
	for i, seg := range rev {
		out[len(rev)-1-i] = seg
	}
	return out
}

// ForLevel projects the root onto the currently selected entity at level.
func ForLevel(level Level) Projection[domain.State, domain.Entity] {
	resolve := func(s domain.State) (Projection[domain.State, domain.Entity], bool) {
		return At(SelectionPath(s, level))
	}
	return Projection[domain.State, domain.Entity]{
		Focus: func(s domain.State) domain.Entity {
			if p, ok := resolve(s); ok {
				return p.Focus(s)
			}
			return domain.Entity{}
		},
		Integrate: func(s domain.State, e domain.Entity) domain.State {
			if p, ok := resolve(s); ok {
				return p.Integrate(s, e)
			}
			return s
		},
	}
}

var (
	TeamScope   = ForLevel(Team)
	GameScope   = ForLevel(Game)
	VideoScope  = ForLevel(Video)
	MemberScope = ForLevel(Member)
)

// Lookup returns the entity at path and whether every segment exists.
func Lookup(s domain.State, path Path) (domain.Entity, bool) {
	if !path.Valid() {
		return domain.Entity{}, false
	}
	e, ok := s.Teams.Get(path[0].ID)
	for _, seg := range path[1:] {
		if !ok {
			break
		}
		children, _ := Children(seg.Level)
		e, ok = children.Focus(e).Get(seg.ID)
	}
	return e, ok
}
