package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"EthFlow/internal/domain/models"
	"EthFlow/internal/domain/repository"
	"EthFlow/internal/service/fallback"
	"EthFlow/internal/services/flow"
	applogger "EthFlow/pkg/logger"
	"EthFlow/pkg/util"
)

const tradeFeedName = "uniswap"

// VolumeParams selects what the volume chain reads from the trade feed.
type VolumeParams struct {
	PoolID string
	Limit  int
	Window time.Duration
}

// VolumeUseCase serves hourly buy/sell volume per mode, backed by the volume cache.
type VolumeUseCase struct {
	trades   repository.TradeFeed
	cache    repository.VolumeCache
	fallback *fallback.VolumeGenerator // nil disables synthetic data
	metrics  repository.Metrics
	log      *applogger.Logger
	cfg      flow.Config
	params   VolumeParams
	now      func() time.Time

	// seqMu orders cache writes per mode: a fetch only stores its result when no
	// later fetch for the same mode has stored one already.
	seqMu     sync.Mutex
	issued    map[models.VolumeMode]uint64
	committed map[models.VolumeMode]uint64
}

func NewVolumeUseCase(
	trades repository.TradeFeed,
	cache repository.VolumeCache,
	gen *fallback.VolumeGenerator,
	metrics repository.Metrics,
	log *applogger.Logger,
	cfg flow.Config,
	params VolumeParams,
) *VolumeUseCase {
	return &VolumeUseCase{
		trades:    trades,
		cache:     cache,
		fallback:  gen,
		metrics:   metrics,
		log:       log,
		cfg:       cfg,
		params:    params,
		now:       time.Now,
		issued:    make(map[models.VolumeMode]uint64),
		committed: make(map[models.VolumeMode]uint64),
	}
}

// WithClock replaces the time source. Intended for tests.
func (uc *VolumeUseCase) WithClock(now func() time.Time) *VolumeUseCase {
	uc.now = now
	return uc
}

// Volume returns the buckets for the mode. A valid cache slot is served unless
// forceRefresh is set. An empty whale result is a valid answer, not a failure.
func (uc *VolumeUseCase) Volume(ctx context.Context, whaleMode, forceRefresh bool) (models.VolumeResult, error) {
	start := time.Now()
	defer func() { uc.metrics.RecordLatency("volume", time.Since(start).Seconds()) }()

	mode := models.ModeFor(whaleMode)
	if !forceRefresh {
		if res, ok := uc.fromCache(ctx, mode); ok {
			return res, nil
		}
	}

	seq := uc.issue(mode)
	from, to := util.TrailingWindow(uc.now(), uc.params.Window)
	since := from.Unix()

	trades, err := uc.trades.GetRecentTrades(ctx, uc.params.PoolID, since, uc.params.Limit)
	if err != nil {
		return uc.degrade(mode, err)
	}
	if len(trades) >= uc.params.Limit {
		uc.log.Warn("trade feed returned a full page, window is truncated",
			applogger.Int("limit", uc.params.Limit),
			applogger.String("mode", string(mode)),
		)
	}

	buckets := flow.Aggregate(trades, mode.IsWhale(), uc.cfg.WhaleThresholdUSD, since*1000, to.UnixMilli())
	if len(buckets) == 0 {
		uc.log.Info("no volume in window", applogger.String("mode", string(mode)), applogger.Int("trades", len(trades)))
	}

	uc.commit(ctx, mode, seq, buckets)
	uc.log.Info("volume refreshed",
		applogger.String("mode", string(mode)),
		applogger.Int("trades", len(trades)),
		applogger.Int("buckets", len(buckets)),
		applogger.String("total_usd", humanize.Commaf(totalVolume(buckets))),
	)

	return models.VolumeResult{
		Mode:     mode,
		Buckets:  buckets,
		FeedMeta: models.Live(),
	}, nil
}

func (uc *VolumeUseCase) fromCache(ctx context.Context, mode models.VolumeMode) (models.VolumeResult, bool) {
	if !uc.cache.IsValid(ctx, mode) {
		uc.metrics.RecordCache(string(mode), false)
		return models.VolumeResult{}, false
	}
	entry, ok := uc.cache.Get(ctx, mode)
	uc.metrics.RecordCache(string(mode), ok)
	if !ok {
		return models.VolumeResult{}, false
	}

	cachedAt := entry.CachedTime().UTC()
	uc.log.Debug("serving cached volume",
		applogger.String("mode", string(mode)),
		applogger.String("age", humanize.Time(cachedAt)),
	)
	return models.VolumeResult{
		Mode:     mode,
		Buckets:  entry.Buckets,
		Cached:   true,
		CachedAt: &cachedAt,
		FeedMeta: models.Live(),
	}, true
}

func (uc *VolumeUseCase) degrade(mode models.VolumeMode, err error) (models.VolumeResult, error) {
	reason := repository.FailureReason(err)
	if uc.fallback == nil {
		uc.log.Error("trade feed failed", applogger.String("mode", string(mode)), applogger.Error(err))
		return models.VolumeResult{}, err
	}

	uc.log.Warn("trade feed failed, serving synthetic volume",
		applogger.String("mode", string(mode)),
		applogger.String("reason", reason),
		applogger.Error(err),
	)
	uc.metrics.RecordFallback(tradeFeedName, reason)

	return models.VolumeResult{
		Mode:    mode,
		Buckets: uc.fallback.Generate(mode.IsWhale()),
		FeedMeta: models.FeedMeta{
			Source:      models.SourceFallback,
			RateLimited: errors.Is(err, repository.ErrRateLimited),
			Error:       err.Error(),
		},
	}, nil
}

func (uc *VolumeUseCase) issue(mode models.VolumeMode) uint64 {
	uc.seqMu.Lock()
	defer uc.seqMu.Unlock()
	uc.issued[mode]++
	return uc.issued[mode]
}

func (uc *VolumeUseCase) commit(ctx context.Context, mode models.VolumeMode, seq uint64, buckets []models.VolumeBucket) {
	uc.seqMu.Lock()
	defer uc.seqMu.Unlock()

	if seq <= uc.committed[mode] {
		uc.log.Debug("newer volume already cached, dropping result",
			applogger.String("mode", string(mode)),
			applogger.Int64("seq", int64(seq)),
		)
		return
	}
	if err := uc.cache.Put(ctx, mode, buckets); err != nil {
		uc.log.Warn("volume cache write failed", applogger.String("mode", string(mode)), applogger.Error(err))
		return
	}
	uc.committed[mode] = seq
}

func totalVolume(buckets []models.VolumeBucket) float64 {
	var sum float64
	for _, b := range buckets {
		sum += b.TotalVolumeUSD()
	}
	return sum
}
