package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/voxelcore/internal/config"
	"github.com/zeusync/voxelcore/internal/core/events/bus"
	"github.com/zeusync/voxelcore/internal/core/observability/log"
	"github.com/zeusync/voxelcore/internal/core/world"
)

// WorldSet provides a world with its own logger and bus.
var WorldSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	world.New,
)

// ProvideLogger builds a JSON logger at the configured level.
func ProvideLogger(cfg *config.Config) (*log.Logger, func()) {
	logger := log.New(cfg.LogLevel())
	return logger, func() { _ = logger.Sync() }
}
