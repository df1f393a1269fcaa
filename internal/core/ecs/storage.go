package ecs

import (
	"iter"
	"slices"
)

// Storage holds the components of one type, sorted by entity. Keys and
// component pointers live in parallel slices; lookups are binary searches
// over the key slice.
//
// Pointers returned by Add and Get stay valid until that entity's component
// is removed. A nil *Storage behaves as an empty storage.
type Storage[T any] struct {
	entities []Entity
	items    []*T
}

// NewStorage creates an empty storage.
func NewStorage[T any]() *Storage[T] {
	return &Storage[T]{}
}

func (s *Storage[T]) search(e Entity) (int, bool) {
	return slices.BinarySearch(s.entities, e)
}

// Add stores c for e. If e already has a component, the existing one is
// returned unchanged and inserted is false.
func (s *Storage[T]) Add(e Entity, c T) (p *T, inserted bool) {
	i, found := s.search(e)
	if found {
		return s.items[i], false
	}
	p = new(T)
	*p = c
	s.entities = slices.Insert(s.entities, i, e)
	s.items = slices.Insert(s.items, i, p)
	return p, true
}

// Remove erases the component of e and reports whether there was one.
func (s *Storage[T]) Remove(e Entity) bool {
	if s == nil {
		return false
	}
	i, found := s.search(e)
	if !found {
		return false
	}
	s.entities = slices.Delete(s.entities, i, i+1)
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

// Get returns the component of e.
func (s *Storage[T]) Get(e Entity) (*T, bool) {
	if s == nil {
		return nil, false
	}
	if i, found := s.search(e); found {
		return s.items[i], true
	}
	return nil, false
}

// Has reports whether e has a component in s.
func (s *Storage[T]) Has(e Entity) bool {
	if s == nil {
		return false
	}
	_, found := s.search(e)
	return found
}

// Len returns the number of stored components.
func (s *Storage[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entities)
}

// EntityAt returns the i-th entity in ascending order.
func (s *Storage[T]) EntityAt(i int) Entity { return s.entities[i] }

// At returns the i-th component in entity order.
func (s *Storage[T]) At(i int) *T { return s.items[i] }

// All yields every (entity, component) pair in ascending entity order.
func (s *Storage[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for i := 0; i < s.Len(); i++ {
			if !yield(s.entities[i], s.items[i]) {
				return
			}
		}
	}
}

// Clear drops every component.
func (s *Storage[T]) Clear() {
	if s == nil {
		return
	}
	clear(s.items)
	s.entities = s.entities[:0]
	s.items = s.items[:0]
}

func (s *Storage[T]) component(e Entity) (any, bool) {
	p, ok := s.Get(e)
	if !ok {
		return nil, false
	}
	return p, true
}

// anyStorage is the type-erased face of Storage used by the registry and
// by views.
type anyStorage interface {
	Len() int
	EntityAt(i int) Entity
	Has(e Entity) bool
	Remove(e Entity) bool
	Clear()
	component(e Entity) (any, bool)
}

var _ anyStorage = (*Storage[struct{}])(nil)
