package scene

import "github.com/zeusync/voxelcore/internal/core/ecs"

const (
	EventParentChanged              = "scene.parent.changed"
	EventVisibilityChanged          = "scene.visibility.changed"
	EventEffectiveVisibilityChanged = "scene.visibility.effective.changed"
)

// ParentChanged is published when Entity moves from Old to New. Either may
// be ecs.Invalid.
type ParentChanged struct {
	Entity ecs.Entity
	Old    ecs.Entity
	New    ecs.Entity
}

func (ParentChanged) Type() string { return EventParentChanged }

// VisibilityChanged is published when the author flag of a Meta flips.
type VisibilityChanged struct {
	Entity  ecs.Entity
	Visible bool
}

func (VisibilityChanged) Type() string { return EventVisibilityChanged }

// EffectiveVisibilityChanged is published when the derived flag flips.
type EffectiveVisibilityChanged struct {
	Entity  ecs.Entity
	Visible bool
}

func (EffectiveVisibilityChanged) Type() string { return EventEffectiveVisibilityChanged }
