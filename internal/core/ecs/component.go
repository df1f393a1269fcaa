package ecs

import "reflect"

// TypeID is the stable key of a registered component type. Ids are dense
// and follow registration order.
type TypeID uint16

// MaxComponentTypes is the number of distinct component types one registry
// can hold.
const MaxComponentTypes = 1 << 12

// TypeInfo describes a registered component type.
type TypeInfo struct {
	ID   TypeID
	Name string
	Type reflect.Type
}

// Base carries the owning entity of a component. Components embed it; the
// registry overwrites the entity on attach, whatever the caller set.
type Base struct {
	entity Entity
}

// Entity returns the entity the component is attached to.
func (b Base) Entity() Entity { return b.entity }

func (b *Base) bind(e Entity) { b.entity = e }

type binder interface {
	bind(Entity)
}

// Attacher is implemented by components that need the registry once they are
// stored. OnAttach runs after the entity is stamped and before ComponentAdded
// is published.
type Attacher interface {
	OnAttach(r *Registry)
}

// Detacher is implemented by components that react to their removal.
// OnDetach runs after ComponentRemoved is published and before the component
// is erased. It does not run on Cleanup.
type Detacher interface {
	OnDetach(r *Registry)
}
