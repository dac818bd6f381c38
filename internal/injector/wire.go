//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/cosmos/internal/server"
	"github.com/zeusync/cosmos/sdk/go/client"
)

func InitializeServer(path ConfigPath) (*server.Server, func(), error) {
	wire.Build(CommonSet, ProvideListener, server.NewServer)
	return nil, nil, nil
}

func InitializeClient(path ConfigPath) (*client.Client, func(), error) {
	wire.Build(CommonSet, ProvideClient)
	return nil, nil, nil
}
