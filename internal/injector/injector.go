//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/voxelcore/internal/config"
	"github.com/zeusync/voxelcore/internal/core/world"
)

// InitializeWorld builds a world for cfg. The cleanup flushes its logger.
func InitializeWorld(cfg *config.Config) (*world.World, func(), error) {
	wire.Build(WorldSet)
	return nil, nil, nil
}
