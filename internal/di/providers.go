package di

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"EthFlow/internal/domain/repository"
	"EthFlow/internal/handler/api"
	volcache "EthFlow/internal/service/cache"
	"EthFlow/internal/service/coingecko"
	"EthFlow/internal/service/fallback"
	"EthFlow/internal/service/ratelimit"
	"EthFlow/internal/service/uniswap"
	"EthFlow/internal/service/upstream"
	"EthFlow/internal/usecase"
	pkgcache "EthFlow/pkg/cache"
	"EthFlow/pkg/config"
	xhttp "EthFlow/pkg/http"
	applogger "EthFlow/pkg/logger"
	"EthFlow/pkg/metrics"
	"EthFlow/pkg/server"
)

// l1TTL bounds how long a value read from Redis stays in the in-process layer.
const l1TTL = 30 * time.Second

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New()
}

// ProvideTradeFeed creates the Uniswap subgraph client.
func ProvideTradeFeed(cfg *config.Config, m repository.Metrics, l *applogger.Logger) repository.TradeFeed {
	client := xhttp.NewClient(xhttp.WithTimeout(cfg.Uniswap.Timeout))
	return uniswap.New(cfg.Uniswap.SubgraphURL, client,
		upstream.WithRetry(cfg.Uniswap.RetryAttempts, 500*time.Millisecond),
		upstream.WithMetrics(m),
		upstream.WithLogger(l),
	)
}

// ProvidePriceFeed creates the CoinGecko client wrapped with fallback handling.
func ProvidePriceFeed(cfg *config.Config, m repository.Metrics, l *applogger.Logger) *fallback.PriceFeed {
	client := xhttp.NewClient(
		xhttp.WithTimeout(cfg.CoinGecko.Timeout),
		xhttp.WithHeader(coingecko.APIKeyHeader, cfg.CoinGecko.APIKey),
	)
	live := coingecko.New(cfg.CoinGecko.BaseURL, cfg.CoinGecko.CoinID,
		cfg.CoinGecko.CallsPerMinute, cfg.CoinGecko.Burst, client,
		upstream.WithRetry(2, time.Second),
		upstream.WithMetrics(m),
		upstream.WithLogger(l),
	)
	return fallback.NewPriceFeed(live, cfg.Fallback.Enabled, newRand(cfg.Fallback.Seed), m, l, time.Now)
}

// ProvideVolumeGenerator returns nil when fallback data is disabled.
func ProvideVolumeGenerator(cfg *config.Config) *fallback.VolumeGenerator {
	if !cfg.Fallback.Enabled {
		return nil
	}
	// offset so the two generators do not replay the same sequence
	return fallback.NewVolumeGenerator(newRand(cfg.Fallback.Seed+1), cfg.Flow.WhaleThresholdUSD, time.Now)
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// ProvideRedisCache connects to Redis. It returns nil when Redis is disabled.
func ProvideRedisCache(cfg *config.Config, l *applogger.Logger) (*pkgcache.RedisCache, error) {
	rc := cfg.Cache.Redis
	if !rc.Enabled {
		return nil, nil
	}
	c, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisAddr(rc.Addr),
		pkgcache.WithRedisPassword(rc.Password),
		pkgcache.WithRedisDB(rc.DB),
		pkgcache.WithRedisPrefix(rc.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("redis cache connected", applogger.String("addr", rc.Addr))
	return c, nil
}

// ProvideVolumeCache keeps volume slots in memory, or in Redis behind a short
// in-process layer when Redis is configured.
func ProvideVolumeCache(cfg *config.Config, redis *pkgcache.RedisCache, l *applogger.Logger) repository.VolumeCache {
	if redis == nil {
		return volcache.NewMemoryVolumeCache(cfg.Flow.CacheTTL)
	}
	layered := pkgcache.NewLayeredCache(pkgcache.NewMemoryCache(), redis, l1TTL)
	return volcache.NewStoreVolumeCache(layered, cfg.Flow.CacheTTL, l)
}

// ProvideVolumeUseCase creates the volume chain.
func ProvideVolumeUseCase(
	cfg *config.Config,
	trades repository.TradeFeed,
	cache repository.VolumeCache,
	gen *fallback.VolumeGenerator,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.VolumeUseCase {
	return usecase.NewVolumeUseCase(trades, cache, gen, m, l, cfg.FlowConfig(), usecase.VolumeParams{
		PoolID: cfg.Uniswap.PoolID,
		Limit:  cfg.Uniswap.Limit,
		Window: cfg.Uniswap.Window,
	})
}

// ProvidePriceUseCase creates the price chain.
func ProvidePriceUseCase(feed *fallback.PriceFeed, m repository.Metrics, l *applogger.Logger) *usecase.PriceUseCase {
	return usecase.NewPriceUseCase(feed, m, l)
}

// ProvideDashboardUseCase joins both chains.
func ProvideDashboardUseCase(
	cfg *config.Config,
	prices *usecase.PriceUseCase,
	volume *usecase.VolumeUseCase,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.DashboardUseCase {
	return usecase.NewDashboardUseCase(prices, volume, m, l, cfg.FlowConfig(), cfg.API.Timeout)
}

// ProvideRefreshLimiter limits forced refreshes per client.
func ProvideRefreshLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(float64(cfg.API.RefreshBurst), cfg.API.RefreshPerSecond)
}

// ProvideHTTPHandler creates the dashboard API handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	prices *usecase.PriceUseCase,
	volume *usecase.VolumeUseCase,
	dashboard *usecase.DashboardUseCase,
	limiter *ratelimit.Limiter,
) xhttp.Handler {
	return api.NewDashboardEchoHandler(l, prices, volume, dashboard, limiter)
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h, l,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(cfg.Server.AllowOrigins),
		xhttp.WithMetricsPath(metricsPath),
	)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, redis *pkgcache.RedisCache) *server.App {
	var closers []io.Closer
	if redis != nil {
		closers = append(closers, redis)
	}
	return server.New(cfg, l, srv, closers...)
}
