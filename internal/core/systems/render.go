package systems

import (
	"fmt"
	"slices"

	"github.com/zeusync/voxelcore/internal/core/ecs"
	"github.com/zeusync/voxelcore/internal/core/events/bus"
	"github.com/zeusync/voxelcore/internal/core/observability/log"
	"github.com/zeusync/voxelcore/internal/core/scene"
	"github.com/zeusync/voxelcore/pkg/linear"
)

// Batch is the draw list of one mesh: the world matrices of every
// effectively visible entity that uses it. Entities[i] owns Matrices[i].
type Batch struct {
	Mesh     scene.MeshHandle
	Name     string
	Entities []ecs.Entity
	Matrices []linear.M4
	Dirty    bool
}

type slot struct {
	mesh  scene.MeshHandle
	index int
}

// RenderBatcher groups drawable entities by mesh for an external renderer.
// An entity is drawable when it has a Transform, a Mesh and a Meta whose
// effective visibility is true. Membership follows registry events; Run only
// refreshes matrices. A Mesh handle must not change while attached.
type RenderBatcher struct {
	reg    *ecs.Registry
	logger log.Log

	batches map[scene.MeshHandle]*Batch
	slots   map[ecs.Entity]slot
	subs    bus.Subscriptions

	tracked map[ecs.TypeID]struct{}
}

func NewRenderBatcher(r *ecs.Registry, logger log.Log) (*RenderBatcher, error) {
	s := &RenderBatcher{
		reg:     r,
		logger:  logger.With(log.String("system", RenderBatcherName)),
		batches: make(map[scene.MeshHandle]*Batch),
		slots:   make(map[ecs.Entity]slot),
		tracked: make(map[ecs.TypeID]struct{}, 3),
	}
	for _, c := range []struct {
		name string
		id   func(*ecs.Registry) (ecs.TypeID, bool)
	}{
		{scene.TransformName, ecs.TypeOf[scene.Transform]},
		{scene.MeshName, ecs.TypeOf[scene.Mesh]},
		{scene.MetaName, ecs.TypeOf[scene.Meta]},
	} {
		id, ok := c.id(r)
		if !ok {
			return nil, fmt.Errorf("render batcher: %w: %s", ecs.ErrUnregisteredComponent, c.name)
		}
		s.tracked[id] = struct{}{}
	}
	if err := s.subscribe(); err != nil {
		_ = s.subs.Cancel()
		return nil, fmt.Errorf("render batcher: %w", err)
	}
	s.logger.Info("initialised render batcher")
	return s, nil
}

func (s *RenderBatcher) subscribe() error {
	b := s.reg.Bus()
	sub, err := bus.SubscribeTo(b, func(ev ecs.ComponentAdded) error {
		if _, ok := s.tracked[ev.Component]; ok {
			s.sync(ev.Entity)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.subs.Add(sub)

	sub, err = bus.SubscribeTo(b, func(ev ecs.ComponentRemoved) error {
		if _, ok := s.tracked[ev.Component]; ok {
			s.remove(ev.Entity)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.subs.Add(sub)

	sub, err = bus.SubscribeTo(b, func(ev scene.EffectiveVisibilityChanged) error {
		s.sync(ev.Entity)
		return nil
	})
	if err != nil {
		return err
	}
	s.subs.Add(sub)

	sub, err = bus.SubscribeTo(b, func(ev ecs.EntityDestroyed) error {
		s.remove(ev.Entity)
		return nil
	})
	if err != nil {
		return err
	}
	s.subs.Add(sub)

	sub, err = bus.SubscribeTo(b, func(ecs.EntitiesCleared) error {
		clear(s.batches)
		clear(s.slots)
		return nil
	})
	if err != nil {
		return err
	}
	s.subs.Add(sub)
	return nil
}

func (s *RenderBatcher) Name() string { return RenderBatcherName }

func (s *RenderBatcher) sync(e ecs.Entity) {
	t, hasT := ecs.GetComponent[scene.Transform](s.reg, e)
	m, hasM := ecs.GetComponent[scene.Mesh](s.reg, e)
	meta, hasMeta := ecs.GetComponent[scene.Meta](s.reg, e)
	want := hasT && hasM && hasMeta && meta.EffectiveVisible()

	_, in := s.slots[e]
	switch {
	case want && !in:
		s.insert(e, m, t.World())
	case !want && in:
		s.remove(e)
	}
}

func (s *RenderBatcher) insert(e ecs.Entity, m *scene.Mesh, world linear.M4) {
	b, ok := s.batches[m.Handle]
	if !ok {
		b = &Batch{Mesh: m.Handle, Name: m.Name}
		s.batches[m.Handle] = b
	}
	s.slots[e] = slot{mesh: m.Handle, index: len(b.Entities)}
	b.Entities = append(b.Entities, e)
	b.Matrices = append(b.Matrices, world)
	b.Dirty = true
}

// remove swaps the last slot of the batch into e's place.
func (s *RenderBatcher) remove(e ecs.Entity) {
	sl, ok := s.slots[e]
	if !ok {
		return
	}
	delete(s.slots, e)
	b := s.batches[sl.mesh]
	last := len(b.Entities) - 1
	if sl.index != last {
		moved := b.Entities[last]
		b.Entities[sl.index] = moved
		b.Matrices[sl.index] = b.Matrices[last]
		s.slots[moved] = slot{mesh: sl.mesh, index: sl.index}
	}
	b.Entities = b.Entities[:last]
	b.Matrices = b.Matrices[:last]
	b.Dirty = true
}

// Run copies the current world matrices into the batches.
func (s *RenderBatcher) Run() error {
	for _, b := range s.batches {
		for i, e := range b.Entities {
			t, ok := ecs.GetComponent[scene.Transform](s.reg, e)
			if !ok {
				continue
			}
			if w := t.World(); w != b.Matrices[i] {
				b.Matrices[i] = w
				b.Dirty = true
			}
		}
	}
	return nil
}

// Batches returns a copy of every non-empty batch ordered by mesh handle.
func (s *RenderBatcher) Batches() []Batch {
	out := make([]Batch, 0, len(s.batches))
	for _, h := range s.handles() {
		if b := s.batches[h]; len(b.Entities) > 0 {
			out = append(out, b.snapshot())
		}
	}
	return out
}

// Flush returns the batches changed since the last Flush, ordered by mesh
// handle, and clears their dirty flags. A batch that lost its last entity is
// reported once, empty, and then dropped.
func (s *RenderBatcher) Flush() []Batch {
	var out []Batch
	for _, h := range s.handles() {
		b := s.batches[h]
		if !b.Dirty {
			continue
		}
		out = append(out, b.snapshot())
		b.Dirty = false
		if len(b.Entities) == 0 {
			delete(s.batches, h)
		}
	}
	return out
}

func (b *Batch) snapshot() Batch {
	return Batch{
		Mesh:     b.Mesh,
		Name:     b.Name,
		Entities: slices.Clone(b.Entities),
		Matrices: slices.Clone(b.Matrices),
		Dirty:    b.Dirty,
	}
}

// Drawn returns the number of batched entities.
func (s *RenderBatcher) Drawn() int { return len(s.slots) }

func (s *RenderBatcher) handles() []scene.MeshHandle {
	hs := make([]scene.MeshHandle, 0, len(s.batches))
	for h := range s.batches {
		hs = append(hs, h)
	}
	slices.Sort(hs)
	return hs
}

// Close stops listening to the registry.
func (s *RenderBatcher) Close() error {
	return s.subs.Cancel()
}
