package systems

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/voxelcore/internal/core/ecs"
	"github.com/zeusync/voxelcore/internal/core/events/bus"
	"github.com/zeusync/voxelcore/internal/core/observability/log"
	"github.com/zeusync/voxelcore/internal/core/scene"
	"github.com/zeusync/voxelcore/pkg/linear"
)

type fixture struct {
	r  *ecs.Registry
	ts *TransformSystem
	vs *VisibilitySystem
	rb *RenderBatcher
}

func newFixture(t *testing.T, mode VisibilityMode) *fixture {
	t.Helper()
	logger := log.NewNop()
	r := ecs.NewRegistry(bus.New(), logger)
	scene.RegisterComponents(r)

	vs, err := NewVisibilitySystem(r, logger, mode)
	require.NoError(t, err)
	rb, err := NewRenderBatcher(r, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, vs.Close())
		require.NoError(t, rb.Close())
	})
	return &fixture{r: r, ts: NewTransformSystem(r, logger), vs: vs, rb: rb}
}

// node creates an entity with a Hierarchy under parent, a Transform and a
// Meta named name.
func (f *fixture) node(t *testing.T, name string, parent ecs.Entity, pos, deg, scale linear.V3) ecs.Entity {
	t.Helper()
	e := f.r.CreateEntity()
	_, err := ecs.AddComponent(f.r, e, scene.NewHierarchy(parent))
	require.NoError(t, err)
	_, err = ecs.AddComponent(f.r, e, scene.NewTransformEuler(pos, deg, scale))
	require.NoError(t, err)
	_, err = ecs.AddComponent(f.r, e, scene.NewMeta(name))
	require.NoError(t, err)
	return e
}

func (f *fixture) at(t *testing.T, name string, parent ecs.Entity, pos linear.V3) ecs.Entity {
	t.Helper()
	return f.node(t, name, parent, pos, linear.V3{}, linear.V3{1, 1, 1})
}

func (f *fixture) frame(t *testing.T) {
	t.Helper()
	require.NoError(t, f.vs.Run())
	require.NoError(t, f.ts.Run())
	require.NoError(t, f.rb.Run())
}

func (f *fixture) transform(t *testing.T, e ecs.Entity) *scene.Transform {
	t.Helper()
	tr, ok := ecs.GetComponent[scene.Transform](f.r, e)
	require.True(t, ok)
	return tr
}

func (f *fixture) meta(t *testing.T, e ecs.Entity) *scene.Meta {
	t.Helper()
	m, ok := ecs.GetComponent[scene.Meta](f.r, e)
	require.True(t, ok)
	return m
}

func (f *fixture) hierarchy(t *testing.T, e ecs.Entity) *scene.Hierarchy {
	t.Helper()
	h, ok := ecs.GetComponent[scene.Hierarchy](f.r, e)
	require.True(t, ok)
	return h
}

func (f *fixture) world(t *testing.T, e ecs.Entity) linear.M4 {
	t.Helper()
	return f.transform(t, e).World()
}

func translation(m linear.M4) linear.V3 { return m.Translation() }
