// Package scope narrows the root state to child entities and writes child
// changes back.
//
// A Projection is a focus/integrate pair obeying the lens laws:
//
//	Focus(Integrate(p, c)) == c
//	Integrate(p, Focus(p)) == p
//
// For Key(id) the first law holds only when c.ID == id: Integrate pins the
// written entity to id, since ids are never regenerated.
//
// Missing ids never fail. Focus yields a default entity and Integrate leaves
// the parent untouched.
package scope

import "github.com/jask/teamperf/internal/domain"

// Projection narrows a parent P to a child C and folds a child back.
type Projection[P, C any] struct {
	Focus     func(P) C
	Integrate func(P, C) P
}

// Compose chains outer then inner.
func Compose[A, B, C any](outer Projection[A, B], inner Projection[B, C]) Projection[A, C] {
	return Projection[A, C]{
		Focus: func(a A) C {
			return inner.Focus(outer.Focus(a))
		},
		Integrate: func(a A, c C) A {
			return outer.Integrate(a, inner.Integrate(outer.Focus(a), c))
		},
	}
}

// Project returns the child view of s.
func Project[P, C any](p Projection[P, C], s P) C {
	return p.Focus(s)
}

// Integrate writes child back into s.
func Integrate[P, C any](p Projection[P, C], s P, child C) P {
	return p.Integrate(s, child)
}

// Teams focuses the root's team collection.
var Teams = Projection[domain.State, domain.Entities]{
	Focus: func(s domain.State) domain.Entities { return s.Teams },
	Integrate: func(s domain.State, c domain.Entities) domain.State {
		s.Teams = c
		return s
	},
}

// ChildrenA focuses an entity's first child collection.
var ChildrenA = Projection[domain.Entity, domain.Entities]{
	Focus: func(e domain.Entity) domain.Entities { return e.ChildrenA },
	Integrate: func(e domain.Entity, c domain.Entities) domain.Entity {
		e.ChildrenA = c
		return e
	},
}

// ChildrenB focuses an entity's second child collection.
var ChildrenB = Projection[domain.Entity, domain.Entities]{
	Focus: func(e domain.Entity) domain.Entities { return e.ChildrenB },
	Integrate: func(e domain.Entity, c domain.Entities) domain.Entity {
		e.ChildrenB = c
		return e
	},
}

// Key focuses the element stored under id. The integrated entity keeps id
// as its identity whatever ID it arrives with.
func Key(id string) Projection[domain.Entities, domain.Entity] {
	return Projection[domain.Entities, domain.Entity]{
		Focus: func(c domain.Entities) domain.Entity {
			if e, ok := c.Get(id); ok {
				return e
			}
			return domain.NewEntity(id)
		},
		Integrate: func(c domain.Entities, e domain.Entity) domain.Entities {
			if !c.Has(id) {
				return c
			}
			e.ID = id
			return c.Upsert(e)
		},
	}
}
