package scene

import (
	"iter"
	"slices"

	"github.com/zeusync/voxelcore/internal/core/ecs"
	"github.com/zeusync/voxelcore/pkg/sequence"
)

// Hierarchy links an entity to its parent and children. It keeps the
// children sorted and unique but does not keep links symmetric; the
// transform system does that when reparenting.
type Hierarchy struct {
	ecs.Base
	parent   ecs.Entity
	children []ecs.Entity
	link     bool
}

// NewHierarchy returns a hierarchy under parent. When attached it marks an
// existing Transform dirty, adds itself to the parent's children and
// publishes ParentChanged. Later moves must go through the transform system.
func NewHierarchy(parent ecs.Entity) Hierarchy {
	return Hierarchy{parent: parent, link: parent != ecs.Invalid}
}

func (h *Hierarchy) OnAttach(r *ecs.Registry) {
	if t, ok := ecs.GetComponent[Transform](r, h.Entity()); ok {
		t.MarkDirty()
	}
	if !h.link {
		return
	}
	h.link = false
	if p, ok := ecs.GetComponent[Hierarchy](r, h.parent); ok {
		p.AddChild(h.Entity())
	}
	r.Publish(ParentChanged{Entity: h.Entity(), Old: ecs.Invalid, New: h.parent})
}

// OnDetach marks the transforms of the subtree dirty. The children keep
// their parent link and are walked as roots from then on.
func (h *Hierarchy) OnDetach(r *ecs.Registry) {
	markSubtree(r, h.Entity())
}

func (h *Hierarchy) Parent() ecs.Entity { return h.parent }

func (h *Hierarchy) HasParent() bool { return h.parent != ecs.Invalid }

// IsRoot reports whether h starts a tree: it has no parent, or the parent
// has no Hierarchy of its own, as after the parent was destroyed.
func (h *Hierarchy) IsRoot(r *ecs.Registry) bool {
	return !h.HasParent() || !ecs.HasComponent[Hierarchy](r, h.parent)
}

// SetParent overwrites the parent link only.
func (h *Hierarchy) SetParent(p ecs.Entity) { h.parent = p }

// Children returns the sorted child set. The slice belongs to h.
func (h *Hierarchy) Children() []ecs.Entity { return h.children }

// AddChild inserts c and reports whether it was missing.
func (h *Hierarchy) AddChild(c ecs.Entity) bool {
	i, found := slices.BinarySearch(h.children, c)
	if found {
		return false
	}
	h.children = slices.Insert(h.children, i, c)
	return true
}

// RemoveChild erases c and reports whether it was present.
func (h *Hierarchy) RemoveChild(c ecs.Entity) bool {
	i, found := slices.BinarySearch(h.children, c)
	if !found {
		return false
	}
	h.children = slices.Delete(h.children, i, i+1)
	return true
}

func (h *Hierarchy) HasChild(c ecs.Entity) bool {
	_, found := slices.BinarySearch(h.children, c)
	return found
}

// Descendants yields every entity below e, depth first, children in
// ascending order. e itself is not yielded. The walk assumes the relation
// is acyclic.
func Descendants(r *ecs.Registry, e ecs.Entity) iter.Seq[ecs.Entity] {
	return func(yield func(ecs.Entity) bool) {
		h, ok := ecs.GetComponent[Hierarchy](r, e)
		if !ok {
			return
		}
		var stack []ecs.Entity
		push := func(cs []ecs.Entity) {
			for i := len(cs) - 1; i >= 0; i-- {
				stack = append(stack, cs[i])
			}
		}
		push(h.children)
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(n) {
				return
			}
			if ch, ok := ecs.GetComponent[Hierarchy](r, n); ok {
				push(ch.children)
			}
		}
	}
}

// Subtree yields e followed by its descendants.
func Subtree(r *ecs.Registry, e ecs.Entity) iter.Seq[ecs.Entity] {
	return func(yield func(ecs.Entity) bool) {
		if !yield(e) {
			return
		}
		for d := range Descendants(r, e) {
			if !yield(d) {
				return
			}
		}
	}
}

// IsDescendant reports whether e lies below ancestor.
func IsDescendant(r *ecs.Registry, ancestor, e ecs.Entity) bool {
	return sequence.Contains(Descendants(r, ancestor), e)
}
