// Package identified provides an ordered collection keyed by element identity.
//
// Collections are persistent values: mutators return a new collection and
// leave the receiver untouched, so a collection can be shared freely between
// state snapshots.
package identified

import (
	"iter"
	"reflect"
	"slices"
)

// Keyed is implemented by elements that carry their own stable identity.
type Keyed interface {
	Key() string
}

// Collection is an insertion-ordered set of elements unique by Key.
// The zero value is an empty collection ready to use.
type Collection[T Keyed] struct {
	ids   []string
	items map[string]T
}

// Of builds a collection from values in order. Later duplicates replace
// earlier ones in place.
func Of[T Keyed](values ...T) Collection[T] {
	var c Collection[T]
	for _, v := range values {
		c = c.Upsert(v)
	}
	return c
}

func (c Collection[T]) Len() int { return len(c.ids) }

func (c Collection[T]) Has(id string) bool {
	_, ok := c.items[id]
	return ok
}

// Get returns the element stored under id.
func (c Collection[T]) Get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

// First returns the earliest inserted element still present.
func (c Collection[T]) First() (T, bool) {
	if len(c.ids) == 0 {
		var zero T
		return zero, false
	}
	return c.items[c.ids[0]], true
}

// Upsert appends v when its key is new, otherwise replaces the existing
// element without moving it.
func (c Collection[T]) Upsert(v T) Collection[T] {
	id := v.Key()
	items := make(map[string]T, len(c.items)+1)
	for k, existing := range c.items {
		items[k] = existing
	}
	items[id] = v
	if _, ok := c.items[id]; ok {
		return Collection[T]{ids: c.ids, items: items}
	}
	ids := make([]string, len(c.ids), len(c.ids)+1)
	copy(ids, c.ids)
	return Collection[T]{ids: append(ids, id), items: items}
}

// Update applies f to the element under id. Absent ids are ignored, as are
// results whose key no longer matches id.
func (c Collection[T]) Update(id string, f func(T) T) Collection[T] {
	current, ok := c.items[id]
	if !ok {
		return c
	}
	next := f(current)
	if next.Key() != id {
		return c
	}
	return c.Upsert(next)
}

// Remove drops the element under id, keeping the order of the rest.
func (c Collection[T]) Remove(id string) Collection[T] {
	if !c.Has(id) {
		return c
	}
	if len(c.ids) == 1 {
		return Collection[T]{}
	}
	ids := make([]string, 0, len(c.ids)-1)
	items := make(map[string]T, len(c.items)-1)
	for _, k := range c.ids {
		if k == id {
			continue
		}
		ids = append(ids, k)
		items[k] = c.items[k]
	}
	return Collection[T]{ids: ids, items: items}
}

// IDs returns the keys in iteration order.
func (c Collection[T]) IDs() []string { return slices.Clone(c.ids) }

// Values returns the elements in iteration order. Each call returns a fresh slice.
func (c Collection[T]) Values() []T {
	out := make([]T, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.items[id])
	}
	return out
}

// All iterates id/element pairs in order.
func (c Collection[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for _, id := range c.ids {
			if !yield(id, c.items[id]) {
				return
			}
		}
	}
}

// Equal reports whether both collections hold deeply equal elements in the
// same order.
func (c Collection[T]) Equal(o Collection[T]) bool {
	if len(c.ids) != len(o.ids) {
		return false
	}
	for i, id := range c.ids {
		if o.ids[i] != id {
			return false
		}
		if !reflect.DeepEqual(c.items[id], o.items[id]) {
			return false
		}
	}
	return true
}
