package ecs

import (
	"fmt"
	"reflect"

	"github.com/zeusync/voxelcore/internal/core/events/bus"
	"github.com/zeusync/voxelcore/internal/core/observability/log"
)

type typeEntry struct {
	info  TypeInfo
	store anyStorage
}

// Registry owns entities, one storage per registered component type and the
// editor selection. Lifecycle events go to its bus.
type Registry struct {
	bus    bus.EventBus
	logger log.Log

	types  []typeEntry
	byType map[reflect.Type]TypeID

	last      Entity
	destroyed map[Entity]struct{}
	selected  Entity
}

// NewRegistry creates an empty registry. A nil bus or logger is replaced by
// a private bus and a no-op logger.
func NewRegistry(b bus.EventBus, logger log.Log) *Registry {
	if b == nil {
		b = bus.New()
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Registry{
		bus:       b,
		logger:    logger.With(log.String("component", "ecs")),
		byType:    make(map[reflect.Type]TypeID),
		destroyed: make(map[Entity]struct{}),
	}
}

// Bus returns the bus lifecycle events are published on.
func (r *Registry) Bus() bus.EventBus { return r.bus }

// Logger returns the registry logger.
func (r *Registry) Logger() log.Log { return r.logger }

// Register adds T to the registry under name and returns its id. Registering
// the same type again returns the existing id. An empty name falls back to
// the Go type name.
func Register[T any](r *Registry, name string) TypeID {
	t := reflect.TypeFor[T]()
	if id, ok := r.byType[t]; ok {
		return id
	}
	if len(r.types) >= MaxComponentTypes {
		panic(fmt.Sprintf("ecs: too many component types, limit is %d", MaxComponentTypes))
	}
	if name == "" {
		name = t.Name()
	}
	id := TypeID(len(r.types))
	r.types = append(r.types, typeEntry{
		info:  TypeInfo{ID: id, Name: name, Type: t},
		store: NewStorage[T](),
	})
	r.byType[t] = id
	r.logger.Debug("component type registered", log.String("name", name), log.Int("id", int(id)))
	return id
}

// TypeOf returns the id T was registered under.
func TypeOf[T any](r *Registry) (TypeID, bool) {
	id, ok := r.byType[reflect.TypeFor[T]()]
	return id, ok
}

// Types lists registered component types in id order.
func (r *Registry) Types() []TypeInfo {
	out := make([]TypeInfo, len(r.types))
	for i, t := range r.types {
		out[i] = t.info
	}
	return out
}

// TypeName returns the registered name of id, or "" if unknown.
func (r *Registry) TypeName(id TypeID) string {
	if int(id) >= len(r.types) {
		return ""
	}
	return r.types[id].info.Name
}

// StorageOf returns the storage of T, or nil when T is not registered.
func StorageOf[T any](r *Registry) *Storage[T] {
	id, ok := r.byType[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return r.types[id].store.(*Storage[T])
}

// CreateEntity hands out the next id.
func (r *Registry) CreateEntity() Entity {
	r.last++
	e := r.last
	r.publish(EntityCreated{Entity: e})
	return e
}

// Alive reports whether e was created and not destroyed since the last
// Cleanup.
func (r *Registry) Alive(e Entity) bool {
	if e == Invalid || e > r.last {
		return false
	}
	_, dead := r.destroyed[e]
	return !dead
}

// EntityCount returns the number of alive entities.
func (r *Registry) EntityCount() int {
	return int(r.last) - len(r.destroyed)
}

// DestroyEntity removes every component of e in type id order, drops the
// selection if it pointed at e and publishes EntityDestroyed. Relations held
// by other entities are left as they are.
func (r *Registry) DestroyEntity(e Entity) {
	if !r.Alive(e) {
		return
	}
	for id := range r.types {
		r.remove(TypeID(id), e)
	}
	if r.selected == e {
		r.selected = Invalid
	}
	r.destroyed[e] = struct{}{}
	r.publish(EntityDestroyed{Entity: e})
}

// Cleanup empties every storage, resets the id counter and the selection.
// Detach hooks are not run.
func (r *Registry) Cleanup() {
	for _, t := range r.types {
		t.store.Clear()
	}
	r.last = Invalid
	r.selected = Invalid
	clear(r.destroyed)
	r.publish(EntitiesCleared{})
	r.logger.Debug("registry cleared")
}

// SelectEntity sets the editor selection. Invalid clears it.
func (r *Registry) SelectEntity(e Entity) { r.selected = e }

// SelectedEntity returns the current selection.
func (r *Registry) SelectedEntity() Entity { return r.selected }

// AddComponent stores c for e and returns the stored instance. When e already
// has a T, the existing instance is returned unchanged.
func AddComponent[T any](r *Registry, e Entity, c T) (*T, error) {
	id, ok := TypeOf[T](r)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnregisteredComponent, reflect.TypeFor[T]())
	}
	if !r.Alive(e) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEntity, e)
	}
	s := r.types[id].store.(*Storage[T])
	p, inserted := s.Add(e, c)
	if !inserted {
		return p, nil
	}
	if b, ok := any(p).(binder); ok {
		b.bind(e)
	}
	if a, ok := any(p).(Attacher); ok {
		a.OnAttach(r)
	}
	r.publish(ComponentAdded{Entity: e, Component: id, Name: r.types[id].info.Name})
	return p, nil
}

// GetComponent returns the T of e.
func GetComponent[T any](r *Registry, e Entity) (*T, bool) {
	return StorageOf[T](r).Get(e)
}

// HasComponent reports whether e has a T.
func HasComponent[T any](r *Registry, e Entity) bool {
	return StorageOf[T](r).Has(e)
}

// RemoveComponent removes the T of e and reports whether there was one.
func RemoveComponent[T any](r *Registry, e Entity) bool {
	id, ok := TypeOf[T](r)
	if !ok {
		return false
	}
	return r.remove(id, e)
}

func (r *Registry) remove(id TypeID, e Entity) bool {
	t := r.types[id]
	c, ok := t.store.component(e)
	if !ok {
		return false
	}
	r.publish(ComponentRemoved{Entity: e, Component: id, Name: t.info.Name})
	if d, ok := c.(Detacher); ok {
		d.OnDetach(r)
	}
	return t.store.Remove(e)
}

// Publish sends ev on the registry bus. Handler failures are logged, not
// returned.
func (r *Registry) Publish(ev bus.Event) {
	r.publish(ev)
}

func (r *Registry) publish(ev bus.Event) {
	if err := r.bus.Publish(ev); err != nil {
		r.logger.Warn("event handler failed", log.String("event", ev.Type()), log.Error(err))
	}
}
