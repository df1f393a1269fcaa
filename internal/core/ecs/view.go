package ecs

import (
	"fmt"
	"iter"
)

// cursor walks the smallest of a view's storages and keeps the entities
// present in all of them. It is lazy and single-pass.
//
// Adding or removing components of the viewed types while a cursor is live
// may skip or repeat entities.
type cursor struct {
	stores  []anyStorage
	primary int
	index   int
	current Entity
	done    bool
}

func newCursor(stores ...anyStorage) cursor {
	primary := 0
	for i, s := range stores {
		if s.Len() < stores[primary].Len() {
			primary = i
		}
	}
	return cursor{stores: stores, primary: primary, index: -1}
}

func (c *cursor) next() bool {
	if c.done {
		return false
	}
	p := c.stores[c.primary]
	for c.index++; c.index < p.Len(); c.index++ {
		e := p.EntityAt(c.index)
		if c.matches(e) {
			c.current = e
			return true
		}
	}
	c.done = true
	c.current = Invalid
	return false
}

func (c *cursor) matches(e Entity) bool {
	for i, s := range c.stores {
		if i != c.primary && !s.Has(e) {
			return false
		}
	}
	return true
}

func (c *cursor) entity() Entity {
	if c.current == Invalid {
		panic(fmt.Errorf("%w: call Next first or stop once it returns false", ErrViewOutOfRange))
	}
	return c.current
}

// Next advances to the next matching entity.
func (c *cursor) Next() bool { return c.next() }

// Entity returns the entity under the cursor. It panics before the first
// Next and after Next returned false.
func (c *cursor) Entity() Entity { return c.entity() }

// Count consumes the rest of the view and returns how many entities matched.
func (c *cursor) Count() int {
	n := 0
	for c.next() {
		n++
	}
	return n
}

// Entities yields the remaining matching entities.
func (c *cursor) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for c.next() {
			if !yield(c.current) {
				return
			}
		}
	}
}

func lookup[T any](s *Storage[T], e Entity) *T {
	p, _ := s.Get(e)
	return p
}

// View1 iterates the entities that have an A.
type View1[A any] struct {
	cursor
	a *Storage[A]
}

// NewView1 binds a view to the storage of A. An unregistered type gives an
// empty view.
func NewView1[A any](r *Registry) *View1[A] {
	a := StorageOf[A](r)
	return &View1[A]{cursor: newCursor(a), a: a}
}

// Get returns the component under the cursor.
func (v *View1[A]) Get() *A { return lookup(v.a, v.entity()) }

// Value returns a copy of the component under the cursor.
func (v *View1[A]) Value() A { return *v.Get() }

// All yields the remaining (entity, component) pairs.
func (v *View1[A]) All() iter.Seq2[Entity, *A] {
	return func(yield func(Entity, *A) bool) {
		for v.next() {
			if !yield(v.current, v.Get()) {
				return
			}
		}
	}
}

// Each calls fn for every remaining match.
func (v *View1[A]) Each(fn func(Entity, *A)) {
	for v.next() {
		fn(v.current, v.Get())
	}
}

// View2 iterates the entities that have both an A and a B.
type View2[A, B any] struct {
	cursor
	a *Storage[A]
	b *Storage[B]
}

func NewView2[A, B any](r *Registry) *View2[A, B] {
	a, b := StorageOf[A](r), StorageOf[B](r)
	return &View2[A, B]{cursor: newCursor(a, b), a: a, b: b}
}

func (v *View2[A, B]) Get() (*A, *B) {
	e := v.entity()
	return lookup(v.a, e), lookup(v.b, e)
}

func (v *View2[A, B]) Values() (A, B) {
	a, b := v.Get()
	return *a, *b
}

func (v *View2[A, B]) Each(fn func(Entity, *A, *B)) {
	for v.next() {
		a, b := v.Get()
		fn(v.current, a, b)
	}
}

// View3 iterates the entities that have an A, a B and a C.
type View3[A, B, C any] struct {
	cursor
	a *Storage[A]
	b *Storage[B]
	c *Storage[C]
}

func NewView3[A, B, C any](r *Registry) *View3[A, B, C] {
	a, b, c := StorageOf[A](r), StorageOf[B](r), StorageOf[C](r)
	return &View3[A, B, C]{cursor: newCursor(a, b, c), a: a, b: b, c: c}
}

func (v *View3[A, B, C]) Get() (*A, *B, *C) {
	e := v.entity()
	return lookup(v.a, e), lookup(v.b, e), lookup(v.c, e)
}

func (v *View3[A, B, C]) Values() (A, B, C) {
	a, b, c := v.Get()
	return *a, *b, *c
}

func (v *View3[A, B, C]) Each(fn func(Entity, *A, *B, *C)) {
	for v.next() {
		a, b, c := v.Get()
		fn(v.current, a, b, c)
	}
}

// View4 iterates the entities that have all four component types.
type View4[A, B, C, D any] struct {
	cursor
	a *Storage[A]
	b *Storage[B]
	c *Storage[C]
	d *Storage[D]
}

func NewView4[A, B, C, D any](r *Registry) *View4[A, B, C, D] {
	a, b, c, d := StorageOf[A](r), StorageOf[B](r), StorageOf[C](r), StorageOf[D](r)
	return &View4[A, B, C, D]{cursor: newCursor(a, b, c, d), a: a, b: b, c: c, d: d}
}

func (v *View4[A, B, C, D]) Get() (*A, *B, *C, *D) {
	e := v.entity()
	return lookup(v.a, e), lookup(v.b, e), lookup(v.c, e), lookup(v.d, e)
}

func (v *View4[A, B, C, D]) Values() (A, B, C, D) {
	a, b, c, d := v.Get()
	return *a, *b, *c, *d
}

func (v *View4[A, B, C, D]) Each(fn func(Entity, *A, *B, *C, *D)) {
	for v.next() {
		a, b, c, d := v.Get()
		fn(v.current, a, b, c, d)
	}
}
