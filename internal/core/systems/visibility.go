package systems

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zeusync/voxelcore/internal/core/ecs"
	"github.com/zeusync/voxelcore/internal/core/events/bus"
	"github.com/zeusync/voxelcore/internal/core/observability/log"
	"github.com/zeusync/voxelcore/internal/core/scene"
	"github.com/zeusync/voxelcore/pkg/sequence"
)

// VisibilityMode selects how much of the scene a visibility pass revisits.
type VisibilityMode uint8

const (
	// VisibilityIncremental recomputes the subtrees queued since the last pass.
	VisibilityIncremental VisibilityMode = iota
	// VisibilityFull recomputes every tree on each pass.
	VisibilityFull
)

func (m VisibilityMode) String() string {
	switch m {
	case VisibilityIncremental:
		return "incremental"
	case VisibilityFull:
		return "full"
	default:
		return fmt.Sprintf("VisibilityMode(%d)", uint8(m))
	}
}

// ParseVisibilityMode maps a config value to a mode. The empty string means
// incremental.
func ParseVisibilityMode(s string) (VisibilityMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "incremental":
		return VisibilityIncremental, nil
	case "full":
		return VisibilityFull, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// VisibilitySystem derives Meta effective visibility: an entity is
// effectively visible when it and every ancestor are visible.
//
// Entities are queued by the events that can change the result. Each pass
// re-derives the whole subtree of every queued entity.
type VisibilitySystem struct {
	reg    *ecs.Registry
	logger log.Log
	mode   VisibilityMode

	queue  []ecs.Entity
	queued map[ecs.Entity]struct{}
	stack  []visibilityFrame
	subs   bus.Subscriptions

	metaID      ecs.TypeID
	hierarchyID ecs.TypeID
}

type visibilityFrame struct {
	entity ecs.Entity
	parent bool
}

// NewVisibilitySystem subscribes to r's bus. The scene components must be
// registered on r.
func NewVisibilitySystem(r *ecs.Registry, logger log.Log, mode VisibilityMode) (*VisibilitySystem, error) {
	s := &VisibilitySystem{
		reg:    r,
		logger: logger.With(log.String("system", VisibilitySystemName)),
		mode:   mode,
		queued: make(map[ecs.Entity]struct{}),
	}
	var ok bool
	if s.metaID, ok = ecs.TypeOf[scene.Meta](r); !ok {
		return nil, fmt.Errorf("visibility system: %w: %s", ecs.ErrUnregisteredComponent, scene.MetaName)
	}
	if s.hierarchyID, ok = ecs.TypeOf[scene.Hierarchy](r); !ok {
		return nil, fmt.Errorf("visibility system: %w: %s", ecs.ErrUnregisteredComponent, scene.HierarchyName)
	}
	if err := s.subscribe(); err != nil {
		_ = s.subs.Cancel()
		return nil, fmt.Errorf("visibility system: %w", err)
	}
	s.logger.Info("initialised visibility system", log.String("mode", mode.String()))
	return s, nil
}

func (s *VisibilitySystem) subscribe() error {
	b := s.reg.Bus()
	sub, err := bus.SubscribeTo(b, func(ev scene.VisibilityChanged) error {
		s.MarkDirty(ev.Entity)
		return nil
	})
	if err != nil {
		return err
	}
	s.subs.Add(sub)

	sub, err = bus.SubscribeTo(b, func(ev scene.ParentChanged) error {
		s.MarkDirty(ev.Entity)
		return nil
	})
	if err != nil {
		return err
	}
	s.subs.Add(sub)

	sub, err = bus.SubscribeTo(b, func(ev ecs.ComponentAdded) error {
		if ev.Component == s.metaID || ev.Component == s.hierarchyID {
			s.MarkDirty(ev.Entity)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.subs.Add(sub)

	sub, err = bus.SubscribeTo(b, func(ev ecs.ComponentRemoved) error {
		if ev.Component == s.metaID || ev.Component == s.hierarchyID {
			s.markRemoved(ev.Entity)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.subs.Add(sub)

	sub, err = bus.SubscribeTo(b, func(ecs.EntitiesCleared) error {
		s.reset()
		return nil
	})
	if err != nil {
		return err
	}
	s.subs.Add(sub)
	return nil
}

func (s *VisibilitySystem) Name() string { return VisibilitySystemName }

func (s *VisibilitySystem) Mode() VisibilityMode { return s.mode }

// MarkDirty queues e for the next pass.
func (s *VisibilitySystem) MarkDirty(e ecs.Entity) {
	if _, ok := s.queued[e]; ok {
		return
	}
	s.queued[e] = struct{}{}
	s.queue = append(s.queue, e)
}

// markRemoved queues e and its children. It runs while the removed
// component is still readable, so the children are known even when the
// Hierarchy itself is going away.
func (s *VisibilitySystem) markRemoved(e ecs.Entity) {
	s.MarkDirty(e)
	if h, ok := ecs.GetComponent[scene.Hierarchy](s.reg, e); ok {
		sequence.Each(slices.Values(h.Children()), s.MarkDirty)
	}
}

// MarkAllDirty queues every tree root.
func (s *VisibilitySystem) MarkAllDirty() {
	loose := sequence.Filter(ecs.NewView1[scene.Meta](s.reg).Entities(), func(e ecs.Entity) bool {
		return !ecs.HasComponent[scene.Hierarchy](s.reg, e)
	})
	sequence.Each(loose, s.MarkDirty)

	roots := sequence.Filter2(ecs.NewView1[scene.Hierarchy](s.reg).All(), func(_ ecs.Entity, h *scene.Hierarchy) bool {
		return h.IsRoot(s.reg)
	})
	sequence.Each(sequence.Keys(roots), s.MarkDirty)
}

// Pending returns the number of queued entities.
func (s *VisibilitySystem) Pending() int { return len(s.queue) }

func (s *VisibilitySystem) Run() error {
	if s.mode == VisibilityFull {
		s.MarkAllDirty()
	}
	queue := s.queue
	s.queue = nil
	clear(s.queued)

	flips := 0
	for _, e := range queue {
		if !s.reg.Alive(e) {
			continue
		}
		flips += s.update(e, s.inherited(e))
	}
	if flips > 0 {
		s.logger.Debug("effective visibility updated", log.Int("queued", len(queue)), log.Int("changed", flips))
	}
	return nil
}

// inherited returns the effective visibility of e's nearest ancestor that
// has a Meta, or true at the top of the tree. Tree tops follow the same
// root rule as the transform walk.
func (s *VisibilitySystem) inherited(e ecs.Entity) bool {
	limit := s.reg.EntityCount()
	n := e
	for steps := 0; steps <= limit; steps++ {
		h, ok := ecs.GetComponent[scene.Hierarchy](s.reg, n)
		if !ok || h.IsRoot(s.reg) {
			return true
		}
		n = h.Parent()
		if m, ok := ecs.GetComponent[scene.Meta](s.reg, n); ok {
			return m.EffectiveVisible()
		}
	}
	return true
}

// update writes effective visibility over e's subtree and returns how many
// values flipped. Entities without a Meta pass the inherited value down.
func (s *VisibilitySystem) update(e ecs.Entity, parent bool) int {
	flips := 0
	s.stack = append(s.stack[:0], visibilityFrame{entity: e, parent: parent})
	for len(s.stack) > 0 {
		f := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		effective := f.parent
		if m, ok := ecs.GetComponent[scene.Meta](s.reg, f.entity); ok {
			effective = f.parent && m.Visible()
			if m.SetEffectiveVisible(effective) {
				flips++
				s.reg.Publish(scene.EffectiveVisibilityChanged{Entity: f.entity, Visible: effective})
			}
		}

		h, ok := ecs.GetComponent[scene.Hierarchy](s.reg, f.entity)
		if !ok {
			continue
		}
		children := h.Children()
		for i := len(children) - 1; i >= 0; i-- {
			s.stack = append(s.stack, visibilityFrame{entity: children[i], parent: effective})
		}
	}
	return flips
}

func (s *VisibilitySystem) reset() {
	s.queue = s.queue[:0]
	clear(s.queued)
}

// Close stops listening to the registry.
func (s *VisibilitySystem) Close() error {
	return s.subs.Cancel()
}
