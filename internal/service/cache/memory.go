package cache

import (
	"context"
	"sync"
	"time"

	"EthFlow/internal/domain/models"
)

// Option configures a volume cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces the time source used to stamp and age entries.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// MemoryVolumeCache keeps one slot per mode in process memory.
type MemoryVolumeCache struct {
	mu    sync.RWMutex
	slots map[models.VolumeMode]models.VolumeCacheEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryVolumeCache(ttl time.Duration, opts ...Option) *MemoryVolumeCache {
	o := buildOptions(opts)
	return &MemoryVolumeCache{
		slots: make(map[models.VolumeMode]models.VolumeCacheEntry),
		ttl:   ttl,
		now:   o.now,
	}
}

func (c *MemoryVolumeCache) Get(_ context.Context, mode models.VolumeMode) (models.VolumeCacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.slots[mode]
	if !ok {
		return models.VolumeCacheEntry{}, false
	}
	e.Buckets = cloneBuckets(e.Buckets)
	return e, true
}

func (c *MemoryVolumeCache) Put(_ context.Context, mode models.VolumeMode, buckets []models.VolumeBucket) error {
	entry := models.VolumeCacheEntry{
		Mode:     mode,
		Buckets:  cloneBuckets(buckets),
		CachedAt: c.now().UnixMilli(),
	}

	c.mu.Lock()
	c.slots[mode] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryVolumeCache) IsValid(_ context.Context, mode models.VolumeMode) bool {
	c.mu.RLock()
	e, ok := c.slots[mode]
	c.mu.RUnlock()
	return ok && fresh(e, c.now(), c.ttl)
}

// fresh reports whether the entry is younger than ttl at now.
func fresh(e models.VolumeCacheEntry, now time.Time, ttl time.Duration) bool {
	return now.UnixMilli()-e.CachedAt < ttl.Milliseconds()
}

func cloneBuckets(in []models.VolumeBucket) []models.VolumeBucket {
	out := make([]models.VolumeBucket, len(in))
	copy(out, in)
	return out
}
