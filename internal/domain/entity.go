// Package domain holds the recursive entity tree and the root state value.
package domain

import "github.com/jask/teamperf/internal/identified"

// Kind is an opaque per-entity attribute. It carries no behavior.
type Kind int

const (
	KindUnknown Kind = iota
	KindPrimary
	KindSecondary
	KindArchived
)

func (k Kind) String() string {
	switch k {
	case KindPrimary:
		return "primary"
	case KindSecondary:
		return "secondary"
	case KindArchived:
		return "archived"
	default:
		return "unknown"
	}
}

// Entities is the child collection type used at every depth.
type Entities = identified.Collection[Entity]

// Entity is the single node type for teams, games, videos and members.
// What ChildrenA and ChildrenB hold depends on the depth the caller
// places the entity at: a team keeps members in ChildrenA and games in
// ChildrenB, a game keeps videos in ChildrenB.
type Entity struct {
	ID   string
	Name string
	// Time is reserved for per-entity clocks; the global clock never writes it.
	Time float64

	ChildrenA Entities
	ChildrenB Entities

	Notes  string
	Tag    string
	Rank   int
	Count  int
	Kind   Kind
	Score  float64
	Weight float64
}

// Key implements identified.Keyed.
func (e Entity) Key() string { return e.ID }

// NewEntity returns the default entity for id.
func NewEntity(id string) Entity {
	return Entity{ID: id}
}

// Size counts e and all of its descendants.
func (e Entity) Size() int {
	n := 1
	for _, c := range e.ChildrenA.Values() {
		n += c.Size()
	}
	for _, c := range e.ChildrenB.Values() {
		n += c.Size()
	}
	return n
}
