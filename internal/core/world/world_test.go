package world

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/voxelcore/internal/config"
	"github.com/zeusync/voxelcore/internal/core/ecs"
	"github.com/zeusync/voxelcore/internal/core/observability/log"
	"github.com/zeusync/voxelcore/internal/core/scene"
	"github.com/zeusync/voxelcore/internal/core/systems"
	"github.com/zeusync/voxelcore/pkg/linear"
)

func newWorld(t *testing.T, cfg *config.Config) *World {
	t.Helper()
	w, err := New(cfg, log.NewNop(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, w.Close()) })
	return w
}

func worldPos(t *testing.T, w *World, e ecs.Entity) linear.V3 {
	t.Helper()
	tr, ok := ecs.GetComponent[scene.Transform](w.Registry(), e)
	require.True(t, ok)
	m := tr.World()
	return m.Translation()
}

func TestFrameComposesScene(t *testing.T) {
	w := newWorld(t, nil)
	root, err := w.Spawn(EntitySpec{Name: "R"})
	require.NoError(t, err)
	child, err := w.Spawn(EntitySpec{Name: "C", Parent: root, Position: linear.V3{1, 0, 0}})
	require.NoError(t, err)

	require.NoError(t, w.Frame())
	assert.Equal(t, linear.V3{1, 0, 0}, worldPos(t, w, child))

	tr, _ := ecs.GetComponent[scene.Transform](w.Registry(), root)
	tr.SetPosition(linear.V3{5, 0, 0})
	require.NoError(t, w.Frame())
	assert.Equal(t, linear.V3{6, 0, 0}, worldPos(t, w, child))

	m, _ := ecs.GetComponent[scene.Meta](w.Registry(), root)
	m.SetVisible(false)
	require.NoError(t, w.Frame())
	cm, _ := ecs.GetComponent[scene.Meta](w.Registry(), child)
	assert.True(t, cm.Visible())
	assert.False(t, cm.EffectiveVisible())
	assert.Equal(t, uint64(3), w.Frames())
}

func TestSpawn(t *testing.T) {
	w := newWorld(t, nil)
	_, err := w.Spawn(EntitySpec{Name: "orphan", Parent: 42})
	assert.ErrorIs(t, err, ecs.ErrInvalidEntity)

	e, err := w.Spawn(EntitySpec{Name: "box", Hidden: true, Mesh: "box.vox", Scale: linear.V3{2, 2, 2}})
	require.NoError(t, err)
	r := w.Registry()
	m, _ := ecs.GetComponent[scene.Meta](r, e)
	assert.Equal(t, "box", m.Name())
	assert.False(t, m.Visible())
	mesh, ok := ecs.GetComponent[scene.Mesh](r, e)
	require.True(t, ok)
	assert.Equal(t, scene.HandleOf("box.vox"), mesh.Handle)
	tr, _ := ecs.GetComponent[scene.Transform](r, e)
	assert.Equal(t, linear.V3{2, 2, 2}, tr.Scale())

	plain, err := w.Spawn(EntitySpec{})
	require.NoError(t, err)
	tr, _ = ecs.GetComponent[scene.Transform](r, plain)
	assert.Equal(t, linear.V3{1, 1, 1}, tr.Scale())
	assert.False(t, ecs.HasComponent[scene.Mesh](r, plain))
}

const yard = `
visibility:
  mode: full
frames: 2
scene:
  name: yard
  entities:
    - name: lamp
      parent: post
      position: [0, 2, 0]
      mesh: lamp.vox
    - name: post
      position: [1, 0, 0]
      mesh: post.vox
    - name: ghost
      parent: post
      visible: false
      mesh: lamp.vox
`

func TestLoadScene(t *testing.T) {
	cfg, err := config.Load(strings.NewReader(yard))
	require.NoError(t, err)
	w := newWorld(t, cfg)
	assert.Equal(t, "yard", w.Name())
	assert.Equal(t, systems.VisibilityFull, w.Visibility().Mode())

	ents, err := w.Load(cfg.Scene)
	require.NoError(t, err)
	require.Len(t, ents, 3)

	require.NoError(t, w.Run(context.Background(), cfg.Frames))
	assert.Equal(t, linear.V3{1, 2, 0}, worldPos(t, w, ents["lamp"]))

	h, _ := ecs.GetComponent[scene.Hierarchy](w.Registry(), ents["post"])
	assert.Equal(t, []ecs.Entity{ents["ghost"], ents["lamp"]}, h.Children())

	lamp, ok := w.Lookup("lamp")
	require.True(t, ok)
	assert.Equal(t, ents["lamp"], lamp)
	_, ok = w.Lookup("nobody")
	assert.False(t, ok)

	batches := w.Batcher().Batches()
	require.Len(t, batches, 2)
	assert.Equal(t, 2, w.Batcher().Drawn())
}

func TestLoadRejectsUnknownParent(t *testing.T) {
	w := newWorld(t, nil)
	_, err := w.Load(config.SceneConfig{Entities: []config.EntityConfig{{Name: "a", Parent: "b"}}})
	assert.ErrorIs(t, err, config.ErrUnknownParent)
	assert.Zero(t, w.Registry().EntityCount())
}

func TestReparentThroughWorld(t *testing.T) {
	w := newWorld(t, nil)
	a, _ := w.Spawn(EntitySpec{Name: "a", Position: linear.V3{1, 0, 0}})
	b, _ := w.Spawn(EntitySpec{Name: "b", Parent: a, Position: linear.V3{1, 0, 0}})
	require.NoError(t, w.Frame())

	assert.ErrorIs(t, w.Reparent(a, b), systems.ErrCycle)
	require.NoError(t, w.Reparent(b, ecs.Invalid))
	require.NoError(t, w.Frame())
	got := worldPos(t, w, b)
	assert.InDeltaSlice(t, []float32{2, 0, 0}, got[:], 1e-5)
}

func TestRunStopsOnCancel(t *testing.T) {
	w := newWorld(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx, 10), context.Canceled)
	assert.Zero(t, w.Frames())
}

func TestProfilerRecordsSections(t *testing.T) {
	w := newWorld(t, nil)
	require.NoError(t, w.Run(context.Background(), 3))

	var names []string
	for _, s := range w.Profiler().Snapshot() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{FrameTimerName, systems.RenderBatcherName, systems.TransformSystemName, systems.VisibilitySystemName}, names)
	assert.Equal(t, 3, w.Profiler().Timer(FrameTimerName).Count())
	w.Report()
}

func TestNewWithDefaults(t *testing.T) {
	w, err := New(nil, nil, nil)
	require.NoError(t, err)
	defer func() { assert.NoError(t, w.Close()) }()

	e, err := w.Spawn(EntitySpec{Name: "a", Position: linear.V3{1, 2, 3}})
	require.NoError(t, err)
	require.NoError(t, w.Frame())
	assert.Equal(t, linear.V3{1, 2, 3}, worldPos(t, w, e))
}
