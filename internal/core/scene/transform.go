package scene

import (
	"github.com/zeusync/voxelcore/internal/core/ecs"
	"github.com/zeusync/voxelcore/pkg/linear"
)

// Transform holds the local pose of an entity and its cached world matrix.
// Every mutator recomputes the local matrix and marks the entity and all of
// its descendants dirty. The world matrix is refreshed by the transform
// system.
type Transform struct {
	ecs.Base
	reg *ecs.Registry

	position linear.V3
	rotation linear.Q
	euler    linear.V3
	scale    linear.V3

	local linear.M4
	world linear.M4
	dirty bool
}

// NewTransform returns an unrotated, unit-scale transform at pos.
func NewTransform(pos linear.V3) Transform {
	return NewTransformEuler(pos, linear.V3{}, linear.V3{1, 1, 1})
}

// NewTransformEuler returns a transform from a position, Euler angles in
// degrees and a scale.
func NewTransformEuler(pos, degrees, scale linear.V3) Transform {
	t := Transform{position: pos, scale: scale, world: linear.Ident()}
	t.setEuler(degrees)
	t.update()
	return t
}

func (t *Transform) OnAttach(r *ecs.Registry) {
	t.reg = r
	t.dirty = true
}

func (t *Transform) Position() linear.V3 { return t.position }

func (t *Transform) Rotation() linear.Q { return t.rotation }

func (t *Transform) Scale() linear.V3 { return t.scale }

// RotationEuler returns the rotation as Euler angles in degrees.
func (t *Transform) RotationEuler() linear.V3 { return t.euler }

// Local returns T·R·S.
func (t *Transform) Local() linear.M4 { return t.local }

// World returns the cached world matrix. It is stale while IsDirty is true.
func (t *Transform) World() linear.M4 { return t.world }

func (t *Transform) SetPosition(p linear.V3) {
	t.position = p
	t.update()
}

func (t *Transform) AddPosition(d linear.V3) {
	t.position.Add(&t.position, &d)
	t.update()
}

// SetRotation sets the rotation. q is normalized.
func (t *Transform) SetRotation(q linear.Q) {
	t.rotation.Norm(&q)
	t.euler = linear.Degrees(t.rotation.Angles())
	t.update()
}

// AddRotation applies q on top of the current rotation.
func (t *Transform) AddRotation(q linear.Q) {
	var r linear.Q
	r.Mul(&q, &t.rotation)
	t.SetRotation(r)
}

func (t *Transform) SetRotationEuler(degrees linear.V3) {
	t.setEuler(degrees)
	t.update()
}

func (t *Transform) AddRotationEuler(degrees linear.V3) {
	var d linear.Q
	rad := linear.Radians(degrees)
	d.Euler(rad[0], rad[1], rad[2])
	t.rotation.Mul(&d, &t.rotation)
	t.rotation.Norm(&t.rotation)
	t.euler.Add(&t.euler, &degrees)
	t.update()
}

func (t *Transform) SetScale(s linear.V3) {
	t.scale = s
	t.update()
}

// SetTRS replaces the whole local pose at once.
func (t *Transform) SetTRS(pos linear.V3, rot linear.Q, scale linear.V3) {
	t.position = pos
	t.scale = scale
	t.SetRotation(rot)
}

func (t *Transform) setEuler(degrees linear.V3) {
	rad := linear.Radians(degrees)
	t.euler = degrees
	t.rotation.Euler(rad[0], rad[1], rad[2])
}

func (t *Transform) update() {
	t.local.TRS(&t.position, &t.rotation, &t.scale)
	t.MarkDirty()
}

// MarkDirty flags t and the transform of every descendant.
func (t *Transform) MarkDirty() {
	t.dirty = true
	if t.reg != nil {
		markSubtree(t.reg, t.Entity())
	}
}

// OnDetach marks the subtree dirty; descendants inherit from the next
// transform up from then on.
func (t *Transform) OnDetach(r *ecs.Registry) {
	markSubtree(r, t.Entity())
}

func markSubtree(r *ecs.Registry, e ecs.Entity) {
	for n := range Subtree(r, e) {
		if t, ok := ecs.GetComponent[Transform](r, n); ok {
			t.dirty = true
		}
	}
}

func (t *Transform) MarkClean() { t.dirty = false }

func (t *Transform) IsDirty() bool { return t.dirty }

// UpdateWorld sets the world matrix to parent·local, or local when parent is
// nil, and clears the dirty flag.
func (t *Transform) UpdateWorld(parent *linear.M4) {
	if parent == nil {
		t.world = t.local
	} else {
		t.world.Mul(parent, &t.local)
	}
	t.dirty = false
}
