// Package injector wires the server and client binaries together.
package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/cosmos/internal/core/config"
	"github.com/zeusync/cosmos/internal/core/network/transport"
	"github.com/zeusync/cosmos/internal/core/observability/log"
	"github.com/zeusync/cosmos/internal/core/systems"
	"github.com/zeusync/cosmos/internal/core/systems/physics"
	"github.com/zeusync/cosmos/sdk/go/client"
)

// ConfigPath is the YAML file the binaries load. Empty means defaults.
type ConfigPath string

var CommonSet = wire.NewSet(ProvideConfig, ProvideLogger, ProvidePipeline)

func ProvideConfig(path ConfigPath) (*config.Config, error) {
	return config.LoadFile(string(path))
}

// ProvideLogger builds the process-wide logger at the configured level.
func ProvideLogger(cfg *config.Config) (log.Log, func(), error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	logger := log.New(level)
	cleanup := func() {
		_ = logger.Sync()
	}
	return logger, cleanup, nil
}

func ProvidePipeline(logger log.Log) *systems.Pipeline {
	return systems.NewPipeline(logger, physics.Integrator{})
}

func ProvideListener(cfg *config.Config, logger log.Log) (transport.Listener, error) {
	nw := cfg.Network
	return transport.Listen(nw.Transport, nw.ListenAddr, nw.Path, logger)
}

// ProvideClient builds a client driven by a wanderer.
func ProvideClient(cfg *config.Config, pipeline *systems.Pipeline, logger log.Log) *client.Client {
	return client.NewClient(cfg, pipeline, logger, client.WithInput(client.NewWanderer()))
}
