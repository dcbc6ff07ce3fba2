package cache

import (
	"context"
	"errors"
	"time"

	"EthFlow/internal/domain/models"
	pkgcache "EthFlow/pkg/cache"
	applogger "EthFlow/pkg/logger"
)

// retention bounds how long a stale slot survives in a shared store.
const retention = 24 * time.Hour

// StoreVolumeCache keeps the per-mode slots in a pkg/cache.Service, normally Redis
// behind an in-process layer, so several instances share one cache.
// Freshness is judged from the stored CachedAt, not from the store's expiry.
type StoreVolumeCache struct {
	store pkgcache.Service
	ttl   time.Duration
	now   func() time.Time
	log   *applogger.Logger
}

func NewStoreVolumeCache(store pkgcache.Service, ttl time.Duration, log *applogger.Logger, opts ...Option) *StoreVolumeCache {
	o := buildOptions(opts)
	return &StoreVolumeCache{store: store, ttl: ttl, now: o.now, log: log}
}

func key(mode models.VolumeMode) string {
	return pkgcache.GenerateKey("volume", string(mode))
}

func (c *StoreVolumeCache) Get(ctx context.Context, mode models.VolumeMode) (models.VolumeCacheEntry, bool) {
	var e models.VolumeCacheEntry
	if err := c.store.Get(ctx, key(mode), &e); err != nil {
		if !errors.Is(err, pkgcache.ErrCacheMiss) {
			c.log.Warn("volume cache read failed", applogger.String("mode", string(mode)), applogger.Error(err))
		}
		return models.VolumeCacheEntry{}, false
	}
	return e, true
}

func (c *StoreVolumeCache) Put(ctx context.Context, mode models.VolumeMode, buckets []models.VolumeBucket) error {
	entry := models.VolumeCacheEntry{
		Mode:     mode,
		Buckets:  buckets,
		CachedAt: c.now().UnixMilli(),
	}
	if entry.Buckets == nil {
		entry.Buckets = []models.VolumeBucket{}
	}
	return c.store.Set(ctx, key(mode), entry, retention)
}

func (c *StoreVolumeCache) IsValid(ctx context.Context, mode models.VolumeMode) bool {
	e, ok := c.Get(ctx, mode)
	return ok && fresh(e, c.now(), c.ttl)
}
