// Package world bundles a registry with the scene systems and drives frames.
package world

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeusync/voxelcore/internal/config"
	"github.com/zeusync/voxelcore/internal/core/ecs"
	"github.com/zeusync/voxelcore/internal/core/events/bus"
	"github.com/zeusync/voxelcore/internal/core/observability/log"
	"github.com/zeusync/voxelcore/internal/core/observability/metrics"
	"github.com/zeusync/voxelcore/internal/core/scene"
	"github.com/zeusync/voxelcore/internal/core/systems"
	"github.com/zeusync/voxelcore/pkg/linear"
	"github.com/zeusync/voxelcore/pkg/sequence"
)

// FrameTimerName is the profiler key of a whole frame.
const FrameTimerName = "frame"

// World is one independent scene. It is not safe for concurrent use; run
// separate worlds on separate goroutines instead.
type World struct {
	name   string
	logger log.Log
	bus    bus.EventBus

	registry   *ecs.Registry
	profiler   *metrics.Profiler
	transforms *systems.TransformSystem
	visibility *systems.VisibilitySystem
	batcher    *systems.RenderBatcher
	pipeline   *systems.Pipeline

	frames uint64
}

// New builds an empty world. Nil arguments fall back to the default
// config, a no-op logger and a private bus. The frame order is visibility, transform,
// render batching.
func New(cfg *config.Config, logger log.Log, b bus.EventBus) (*World, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if b == nil {
		b = bus.New()
	}
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With(log.String("world", cfg.Scene.Name))

	r := ecs.NewRegistry(b, logger)
	scene.RegisterComponents(r)

	vis, err := systems.NewVisibilitySystem(r, logger, cfg.VisibilityMode())
	if err != nil {
		return nil, err
	}
	batcher, err := systems.NewRenderBatcher(r, logger)
	if err != nil {
		_ = vis.Close()
		return nil, err
	}
	transforms := systems.NewTransformSystem(r, logger)
	profiler := metrics.NewProfiler(cfg.ProfilerWindow)

	w := &World{
		name:       cfg.Scene.Name,
		logger:     logger,
		bus:        b,
		registry:   r,
		profiler:   profiler,
		transforms: transforms,
		visibility: vis,
		batcher:    batcher,
		pipeline:   systems.NewPipeline(profiler, logger, vis, transforms, batcher),
	}
	logger.Info("world created", log.Strings("systems", w.pipeline.Order()))
	return w, nil
}

func (w *World) Name() string { return w.name }
func (w *World) Registry() *ecs.Registry { return w.registry }
func (w *World) Bus() bus.EventBus { return w.bus }
func (w *World) Profiler() *metrics.Profiler { return w.profiler }
func (w *World) Transforms() *systems.TransformSystem { return w.transforms }
func (w *World) Visibility() *systems.VisibilitySystem { return w.visibility }
func (w *World) Batcher() *systems.RenderBatcher { return w.batcher }
func (w *World) Frames() uint64 { return w.frames }

// Reparent moves child under parent keeping its world pose. Moves that
// would create a cycle are refused.
func (w *World) Reparent(child, parent ecs.Entity) error {
	return w.transforms.ReparentChecked(child, parent)
}

// Frame runs every system once.
func (w *World) Frame() error {
	stop := w.profiler.Time(FrameTimerName)
	err := w.pipeline.Run()
	stop()
	if err != nil {
		return fmt.Errorf("frame %d: %w", w.frames, err)
	}
	w.frames++
	return nil
}

// Run plays n frames, stopping early when ctx is done.
func (w *World) Run(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			w.logger.Info("world stopped", log.Uint64("frames", w.frames))
			return err
		}
		if err := w.Frame(); err != nil {
			return err
		}
	}
	return nil
}

// EntitySpec describes an entity for Spawn. Rotation is Euler degrees. A
// zero Scale means unit scale.
type EntitySpec struct {
	Name     string
	Parent   ecs.Entity
	Position linear.V3
	Rotation linear.V3
	Scale    linear.V3
	Hidden   bool
	Mesh     string
}

// Spawn creates an entity with a Hierarchy, a Transform, a Meta and, when
// spec names one, a Mesh.
func (w *World) Spawn(spec EntitySpec) (ecs.Entity, error) {
	r := w.registry
	if spec.Parent != ecs.Invalid && !r.Alive(spec.Parent) {
		return ecs.Invalid, fmt.Errorf("spawn %q: parent %s: %w", spec.Name, spec.Parent, ecs.ErrInvalidEntity)
	}
	scale := spec.Scale
	if scale == (linear.V3{}) {
		scale = linear.V3{1, 1, 1}
	}

	e := r.CreateEntity()
	if _, err := ecs.AddComponent(r, e, scene.NewHierarchy(spec.Parent)); err != nil {
		return ecs.Invalid, err
	}
	if _, err := ecs.AddComponent(r, e, scene.NewTransformEuler(spec.Position, spec.Rotation, scale)); err != nil {
		return ecs.Invalid, err
	}
	meta, err := ecs.AddComponent(r, e, scene.NewMeta(spec.Name))
	if err != nil {
		return ecs.Invalid, err
	}
	meta.SetVisible(!spec.Hidden)
	if spec.Mesh != "" {
		if _, err := ecs.AddComponent(r, e, scene.NewMesh(spec.Mesh)); err != nil {
			return ecs.Invalid, err
		}
	}
	return e, nil
}

// Load spawns every entity of sc, resolving parents by name, and returns the
// created entities keyed by name.
func (w *World) Load(sc config.SceneConfig) (map[string]ecs.Entity, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	byName := make(map[string]ecs.Entity, len(sc.Entities))
	for _, ec := range sc.Ordered() {
		parent := ecs.Invalid
		if ec.Parent != "" {
			parent = byName[ec.Parent]
		}
		e, err := w.Spawn(EntitySpec{
			Name:     ec.Name,
			Parent:   parent,
			Position: linear.V3(ec.Position),
			Rotation: linear.V3(ec.Rotation),
			Scale:    linear.V3(ec.ScaleOrDefault()),
			Hidden:   !ec.IsVisible(),
			Mesh:     ec.Mesh,
		})
		if err != nil {
			return byName, err
		}
		byName[ec.Name] = e
	}
	w.logger.Info("scene loaded", log.Int("entities", len(byName)))
	return byName, nil
}

// Lookup returns the first entity whose Meta carries name.
func (w *World) Lookup(name string) (ecs.Entity, bool) {
	e, _, ok := sequence.Find2(ecs.NewView1[scene.Meta](w.registry).All(), func(_ ecs.Entity, m *scene.Meta) bool {
		return m.Name() == name
	})
	return e, ok
}

// Report logs the profiler timings.
func (w *World) Report() {
	for _, s := range w.profiler.Snapshot() {
		w.logger.Info("timing",
			log.String("section", s.Name),
			log.Duration("last", s.Last),
			log.Duration("mean", s.Mean),
			log.Duration("max", s.Max),
		)
	}
	w.logger.Info("render batches",
		log.Int("batches", len(w.batcher.Batches())),
		log.Int("drawn", w.batcher.Drawn()),
		log.Uint64("frames", w.frames),
	)
}

// Close detaches the systems from the bus.
func (w *World) Close() error {
	return errors.Join(w.visibility.Close(), w.batcher.Close())
}
