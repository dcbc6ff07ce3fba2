package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type payload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()

	require.NoError(t, mc.Set(ctx, "k", payload{Name: "a", Value: 1.5}, 0))

	var got payload
	require.NoError(t, mc.Get(ctx, "k", &got))
	assert.Equal(t, payload{Name: "a", Value: 1.5}, got)

	assert.ErrorIs(t, mc.Get(ctx, "missing", &got), ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	mc := NewMemoryCache(WithMemoryClock(clock.Now))

	require.NoError(t, mc.Set(ctx, "k", 1, time.Minute))

	var v int
	clock.Advance(time.Minute)
	require.NoError(t, mc.Get(ctx, "k", &v))

	clock.Advance(time.Millisecond)
	assert.ErrorIs(t, mc.Get(ctx, "k", &v), ErrCacheMiss)
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	mc := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryClock(clock.Now))

	require.NoError(t, mc.Set(ctx, "a", 1, 0))
	clock.Advance(time.Second)
	require.NoError(t, mc.Set(ctx, "b", 2, 0))
	clock.Advance(time.Second)

	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	clock.Advance(time.Second)
	require.NoError(t, mc.Set(ctx, "c", 3, 0))

	assert.Equal(t, 2, mc.Len())
	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "a", &v))
	assert.Equal(t, 1, v)
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	require.NoError(t, mc.Set(ctx, "a", 1, 0))
	require.NoError(t, mc.Delete(ctx, "a", "b"))

	var v int
	assert.ErrorIs(t, mc.Get(ctx, "a", &v), ErrCacheMiss)
}

func TestLayeredCache(t *testing.T) {
	ctx := context.Background()
	l1 := NewMemoryCache()
	l2 := NewMemoryCache()
	lc := NewLayeredCache(l1, l2, time.Minute)

	require.NoError(t, lc.Set(ctx, "k", payload{Name: "x"}, time.Hour))
	assert.Equal(t, 1, l1.Len())
	assert.Equal(t, 1, l2.Len())

	require.NoError(t, l1.Delete(ctx, "k"))
	var got payload
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, "x", got.Name)
	assert.Equal(t, 1, l1.Len(), "value promoted back into L1")

	require.NoError(t, lc.Delete(ctx, "k"))
	assert.ErrorIs(t, lc.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "ethflow:volume:whale", GenerateKey("ethflow", "volume:whale"))
	assert.Equal(t, "id", GenerateKey("", "id"))
	assert.Equal(t, "volume:regular:1", GenerateKeyWithParams("volume", "regular", 1))
}
