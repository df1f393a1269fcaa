package scene

import "github.com/zeusync/voxelcore/internal/core/ecs"

// Meta carries the display name and the visibility flags of an entity.
// The effective flag is written by the visibility system only.
type Meta struct {
	ecs.Base
	reg       *ecs.Registry
	name      string
	visible   bool
	effective bool
}

// NewMeta returns a visible Meta. An empty name becomes DefaultEntityName.
func NewMeta(name string) Meta {
	if name == "" {
		name = DefaultEntityName
	}
	return Meta{name: name, visible: true, effective: true}
}

func (m *Meta) OnAttach(r *ecs.Registry) { m.reg = r }

func (m *Meta) Name() string { return m.name }

func (m *Meta) SetName(name string) { m.name = name }

// Visible reports the author flag.
func (m *Meta) Visible() bool { return m.visible }

// EffectiveVisible reports the flag AND-ed with every ancestor's.
func (m *Meta) EffectiveVisible() bool { return m.effective }

// SetVisible sets the author flag and publishes VisibilityChanged when it
// flips.
func (m *Meta) SetVisible(v bool) {
	if m.visible == v {
		return
	}
	m.visible = v
	if m.reg != nil {
		m.reg.Publish(VisibilityChanged{Entity: m.Entity(), Visible: v})
	}
}

// SetEffectiveVisible stores the derived flag and reports whether it changed.
func (m *Meta) SetEffectiveVisible(v bool) bool {
	if m.effective == v {
		return false
	}
	m.effective = v
	return true
}
