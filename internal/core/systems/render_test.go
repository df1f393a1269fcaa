package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/voxelcore/internal/core/ecs"
	"github.com/zeusync/voxelcore/internal/core/scene"
	"github.com/zeusync/voxelcore/pkg/linear"
)

func (f *fixture) drawable(t *testing.T, name, mesh string, parent ecs.Entity, pos linear.V3) ecs.Entity {
	t.Helper()
	e := f.at(t, name, parent, pos)
	_, err := ecs.AddComponent(f.r, e, scene.NewMesh(mesh))
	require.NoError(t, err)
	return e
}

func batchOf(t *testing.T, f *fixture, mesh string) (Batch, bool) {
	t.Helper()
	for _, b := range f.rb.Batches() {
		if b.Mesh == scene.HandleOf(mesh) {
			return b, true
		}
	}
	return Batch{}, false
}

func TestBatchesGroupByMesh(t *testing.T) {
	f := newFixture(t, VisibilityIncremental)
	a := f.drawable(t, "a", "crate", ecs.Invalid, linear.V3{1, 0, 0})
	b := f.drawable(t, "b", "barrel", ecs.Invalid, linear.V3{2, 0, 0})
	c := f.drawable(t, "c", "crate", a, linear.V3{0, 1, 0})
	f.at(t, "plain", ecs.Invalid, linear.V3{})
	f.frame(t)

	assert.Equal(t, 3, f.rb.Drawn())
	batches := f.rb.Batches()
	require.Len(t, batches, 2)
	assert.Less(t, batches[0].Mesh, batches[1].Mesh)

	crate, ok := batchOf(t, f, "crate")
	require.True(t, ok)
	assert.Equal(t, "crate", crate.Name)
	assert.ElementsMatch(t, []ecs.Entity{a, c}, crate.Entities)
	for i, e := range crate.Entities {
		assert.Equal(t, f.world(t, e), crate.Matrices[i])
	}
	barrel, _ := batchOf(t, f, "barrel")
	assert.Equal(t, []ecs.Entity{b}, barrel.Entities)
}

func TestBatchFollowsEffectiveVisibility(t *testing.T) {
	f := newFixture(t, VisibilityIncremental)
	root := f.drawable(t, "root", "crate", ecs.Invalid, linear.V3{})
	child := f.drawable(t, "child", "crate", root, linear.V3{})
	f.frame(t)
	require.Equal(t, 2, f.rb.Drawn())

	f.meta(t, root).SetVisible(false)
	f.frame(t)
	assert.Zero(t, f.rb.Drawn())
	assert.Empty(t, f.rb.Batches())

	f.meta(t, root).SetVisible(true)
	f.meta(t, child).SetVisible(false)
	f.frame(t)
	crate, ok := batchOf(t, f, "crate")
	require.True(t, ok)
	assert.Equal(t, []ecs.Entity{root}, crate.Entities)
}

func TestBatchMembershipFollowsComponents(t *testing.T) {
	f := newFixture(t, VisibilityIncremental)
	a := f.drawable(t, "a", "crate", ecs.Invalid, linear.V3{})
	b := f.drawable(t, "b", "crate", ecs.Invalid, linear.V3{})
	c := f.drawable(t, "c", "crate", ecs.Invalid, linear.V3{})
	f.frame(t)

	require.True(t, ecs.RemoveComponent[scene.Mesh](f.r, a))
	crate, _ := batchOf(t, f, "crate")
	assert.Equal(t, []ecs.Entity{c, b}, crate.Entities)

	f.r.DestroyEntity(c)
	crate, _ = batchOf(t, f, "crate")
	assert.Equal(t, []ecs.Entity{b}, crate.Entities)

	require.True(t, ecs.RemoveComponent[scene.Meta](f.r, b))
	assert.Zero(t, f.rb.Drawn())

	_, err := ecs.AddComponent(f.r, b, scene.NewMeta("b"))
	require.NoError(t, err)
	assert.Equal(t, 1, f.rb.Drawn())

	f.r.Cleanup()
	assert.Zero(t, f.rb.Drawn())
	assert.Empty(t, f.rb.Flush())
}

func TestBatchRunRefreshesMatrices(t *testing.T) {
	f := newFixture(t, VisibilityIncremental)
	root := f.at(t, "root", ecs.Invalid, linear.V3{})
	e := f.drawable(t, "e", "crate", root, linear.V3{1, 0, 0})
	f.frame(t)
	require.Len(t, f.rb.Flush(), 1)
	assert.Empty(t, f.rb.Flush())

	f.transform(t, root).SetPosition(linear.V3{0, 0, 5})
	f.frame(t)
	flushed := f.rb.Flush()
	require.Len(t, flushed, 1)
	assert.True(t, flushed[0].Dirty)
	assert.Equal(t, linear.V3{1, 0, 5}, translation(flushed[0].Matrices[0]))
	assert.Equal(t, []ecs.Entity{e}, flushed[0].Entities)

	f.frame(t)
	assert.Empty(t, f.rb.Flush())
}

func TestFlushReportsEmptiedBatchOnce(t *testing.T) {
	f := newFixture(t, VisibilityIncremental)
	e := f.drawable(t, "e", "crate", ecs.Invalid, linear.V3{})
	f.frame(t)
	f.rb.Flush()

	require.True(t, ecs.RemoveComponent[scene.Mesh](f.r, e))
	flushed := f.rb.Flush()
	require.Len(t, flushed, 1)
	assert.Empty(t, flushed[0].Entities)
	assert.Empty(t, f.rb.Flush())
	assert.Empty(t, f.rb.Batches())
}

func TestSnapshotsAreCopies(t *testing.T) {
	f := newFixture(t, VisibilityIncremental)
	e := f.drawable(t, "e", "crate", ecs.Invalid, linear.V3{})
	f.frame(t)

	snap := f.rb.Batches()
	snap[0].Entities[0] = 999
	again := f.rb.Batches()
	assert.Equal(t, e, again[0].Entities[0])
}
