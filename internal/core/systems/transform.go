package systems

import (
	"fmt"

	"github.com/zeusync/voxelcore/internal/core/ecs"
	"github.com/zeusync/voxelcore/internal/core/observability/log"
	"github.com/zeusync/voxelcore/internal/core/scene"
	"github.com/zeusync/voxelcore/pkg/linear"
	"github.com/zeusync/voxelcore/pkg/sequence"
)

// TransformSystem composes local matrices into world matrices along the
// hierarchy and moves entities between parents.
type TransformSystem struct {
	reg    *ecs.Registry
	logger log.Log
	stack  []transformFrame
}

type transformFrame struct {
	entity ecs.Entity
	parent linear.M4
	root   bool
	force  bool
}

func NewTransformSystem(r *ecs.Registry, logger log.Log) *TransformSystem {
	logger = logger.With(log.String("system", TransformSystemName))
	logger.Info("initialised transform system")
	return &TransformSystem{reg: r, logger: logger}
}

func (s *TransformSystem) Name() string { return TransformSystemName }

// Run refreshes every dirty world matrix. Roots are walked depth first;
// below a recomputed node every descendant is recomputed. A root is a
// hierarchy without a parent, or whose parent has no hierarchy. Roots
// without a transform pass the identity down. Transforms without a
// hierarchy are treated as roots of their own.
func (s *TransformSystem) Run() error {
	roots := sequence.Filter2(ecs.NewView1[scene.Hierarchy](s.reg).All(), func(_ ecs.Entity, h *scene.Hierarchy) bool {
		return h.IsRoot(s.reg)
	})
	for e := range roots {
		s.walk(e)
	}

	loose := sequence.Filter2(ecs.NewView1[scene.Transform](s.reg).All(), func(e ecs.Entity, t *scene.Transform) bool {
		return t.IsDirty() && !ecs.HasComponent[scene.Hierarchy](s.reg, e)
	})
	for _, t := range loose {
		t.UpdateWorld(nil)
	}
	return nil
}

func (s *TransformSystem) walk(root ecs.Entity) {
	s.stack = append(s.stack[:0], transformFrame{entity: root, parent: linear.Ident(), root: true})
	for len(s.stack) > 0 {
		f := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		world, force := f.parent, f.force
		if t, ok := ecs.GetComponent[scene.Transform](s.reg, f.entity); ok {
			if force || t.IsDirty() {
				if f.root {
					t.UpdateWorld(nil)
				} else {
					t.UpdateWorld(&f.parent)
				}
				force = true
			}
			world = t.World()
		}

		h, ok := ecs.GetComponent[scene.Hierarchy](s.reg, f.entity)
		if !ok {
			continue
		}
		children := h.Children()
		for i := len(children) - 1; i >= 0; i-- {
			s.stack = append(s.stack, transformFrame{entity: children[i], parent: world, force: force})
		}
	}
}

// WorldOf returns the world matrix of e. A dirty entity gets its matrix
// composed from its ancestors' local matrices without touching the cache.
func (s *TransformSystem) WorldOf(e ecs.Entity) (linear.M4, bool) {
	t, ok := ecs.GetComponent[scene.Transform](s.reg, e)
	if !ok {
		return linear.Ident(), false
	}
	if !t.IsDirty() {
		return t.World(), true
	}

	var chain []*scene.Transform
	limit := s.reg.EntityCount()
	for n, steps := e, 0; n != ecs.Invalid && steps <= limit; steps++ {
		if nt, ok := ecs.GetComponent[scene.Transform](s.reg, n); ok {
			chain = append(chain, nt)
		}
		h, ok := ecs.GetComponent[scene.Hierarchy](s.reg, n)
		if !ok || h.IsRoot(s.reg) {
			break
		}
		n = h.Parent()
	}
	world := linear.Ident()
	for i := len(chain) - 1; i >= 0; i-- {
		local := chain[i].Local()
		world.Mul(&world, &local)
	}
	return world, true
}

// worldBelow returns the matrix Run hands to the children of e: the world
// of the nearest transform at or above e, or the identity when e is outside
// any tree or no such transform exists.
func (s *TransformSystem) worldBelow(e ecs.Entity) linear.M4 {
	limit := s.reg.EntityCount()
	for n, steps := e, 0; steps <= limit; steps++ {
		h, ok := ecs.GetComponent[scene.Hierarchy](s.reg, n)
		if !ok {
			break
		}
		if ecs.HasComponent[scene.Transform](s.reg, n) {
			w, _ := s.WorldOf(n)
			return w
		}
		if h.IsRoot(s.reg) {
			break
		}
		n = h.Parent()
	}
	return linear.Ident()
}

// Reparent moves child under newParent keeping its world pose. The local
// pose is re-derived from inverse(parentWorld)·world when newParent has a
// hierarchy, or from world otherwise, since a child under a parent without
// one is walked as a root. Cycles are not checked; see ReparentChecked.
func (s *TransformSystem) Reparent(child, newParent ecs.Entity) error {
	h, ok := ecs.GetComponent[scene.Hierarchy](s.reg, child)
	if !ok {
		return fmt.Errorf("reparent %s: %w", child, ErrMissingHierarchy)
	}
	t, ok := ecs.GetComponent[scene.Transform](s.reg, child)
	if !ok {
		return fmt.Errorf("reparent %s: %w", child, ErrMissingTransform)
	}
	old := h.Parent()
	if old == newParent {
		return nil
	}

	world, _ := s.WorldOf(child)

	if old != ecs.Invalid {
		if oh, ok := ecs.GetComponent[scene.Hierarchy](s.reg, old); ok {
			oh.RemoveChild(child)
		}
	}
	h.SetParent(newParent)

	local := world
	if newParent != ecs.Invalid {
		if nh, ok := ecs.GetComponent[scene.Hierarchy](s.reg, newParent); ok {
			nh.AddChild(child)
			parentWorld := s.worldBelow(newParent)
			var inv linear.M4
			inv.Invert(&parentWorld)
			local.Mul(&inv, &world)
		}
	}

	pos, rot, scl := linear.Decompose(&local)
	t.SetTRS(pos, rot, scl)

	s.logger.Debug("entity reparented",
		log.Uint32("entity", uint32(child)),
		log.Uint32("old", uint32(old)),
		log.Uint32("new", uint32(newParent)),
	)
	s.reg.Publish(scene.ParentChanged{Entity: child, Old: old, New: newParent})
	return nil
}

// ReparentChecked refuses moves that would put child below itself.
func (s *TransformSystem) ReparentChecked(child, newParent ecs.Entity) error {
	if newParent == child || s.IsDescendant(child, newParent) {
		s.logger.Warn("reparent refused",
			log.Uint32("entity", uint32(child)),
			log.Uint32("parent", uint32(newParent)),
		)
		return fmt.Errorf("reparent %s under %s: %w", child, newParent, ErrCycle)
	}
	return s.Reparent(child, newParent)
}

// IsDescendant reports whether e lies below ancestor.
func (s *TransformSystem) IsDescendant(ancestor, e ecs.Entity) bool {
	return scene.IsDescendant(s.reg, ancestor, e)
}
