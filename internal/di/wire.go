//go:build wireinject
// +build wireinject

package di

import (
	"EthFlow/pkg/config"
	"EthFlow/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Feeds and caches
		ProvideTradeFeed,
		ProvidePriceFeed,
		ProvideVolumeGenerator,
		ProvideRedisCache,
		ProvideVolumeCache,

		// Use cases
		ProvideVolumeUseCase,
		ProvidePriceUseCase,
		ProvideDashboardUseCase,

		// HTTP
		ProvideRefreshLimiter,
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
