// Package systems holds the per-frame processors of a registry: world
// transform propagation, effective visibility and render batching.
package systems

import (
	"fmt"

	"github.com/zeusync/voxelcore/internal/core/observability/log"
	"github.com/zeusync/voxelcore/internal/core/observability/metrics"
)

// System names, also used as profiler keys.
const (
	TransformSystemName  = "transform"
	VisibilitySystemName = "visibility"
	RenderBatcherName    = "render"
)

// System is a unit of per-frame work over one registry.
type System interface {
	Name() string
	Run() error
}

// Pipeline runs systems in a fixed order and records how long each took.
type Pipeline struct {
	systems  []System
	profiler *metrics.Profiler
	logger   log.Log
}

func NewPipeline(profiler *metrics.Profiler, logger log.Log, systems ...System) *Pipeline {
	return &Pipeline{systems: systems, profiler: profiler, logger: logger}
}

// Run executes every system once. It stops at the first failure.
func (p *Pipeline) Run() error {
	for _, s := range p.systems {
		stop := p.profiler.Time(s.Name())
		err := s.Run()
		stop()
		if err != nil {
			p.logger.Error("system failed", log.String("system", s.Name()), log.Error(err))
			return fmt.Errorf("system %s: %w", s.Name(), err)
		}
	}
	return nil
}

// Order returns the system names in execution order.
func (p *Pipeline) Order() []string {
	names := make([]string, len(p.systems))
	for i, s := range p.systems {
		names[i] = s.Name()
	}
	return names
}
