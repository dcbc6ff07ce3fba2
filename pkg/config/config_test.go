package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 500_000.0, c.Flow.WhaleThresholdUSD)
	assert.Equal(t, int64(1_800_000), c.Flow.ToleranceMs)
	assert.Equal(t, 5*time.Minute, c.Flow.CacheTTL)
	assert.Equal(t, 10, c.CoinGecko.CallsPerMinute)
	assert.Equal(t, "0x8ad599c3a0ff1de082011efddc58f1908eb6e6d8", c.Uniswap.PoolID)
	assert.True(t, c.Fallback.Enabled)
	assert.False(t, c.Cache.Redis.Enabled)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: test
flow:
  whale_threshold_usd: 250000
  cache_ttl: 1m
fallback:
  enabled: false
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 250_000.0, c.Flow.WhaleThresholdUSD)
	assert.Equal(t, time.Minute, c.Flow.CacheTTL)
	assert.Equal(t, 0.05, c.Flow.FlowDeltaThreshold)
	assert.False(t, c.Fallback.Enabled)
	assert.Equal(t, 1000, c.Uniswap.Limit)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"port":      "server:\n  port: 70000\n",
		"limit":     "uniswap:\n  limit: 5000\n",
		"pool":      "uniswap:\n  pool_id: abc\n",
		"log level": "log:\n  level: loud\n",
		"window":    "uniswap:\n  window: 10m\n",
		"redis":     "cache:\n  redis:\n    enabled: true\n    addr: nohost\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadWithEnv(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	t.Setenv("COINGECKO_API_KEY", "cg-key")
	t.Setenv("WHALE_THRESHOLD_USD", "1000000")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("UNISWAP_POOL_ID", "0xabc")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "cg-key", c.CoinGecko.APIKey)
	assert.Equal(t, 1_000_000.0, c.Flow.WhaleThresholdUSD)
	assert.True(t, c.Cache.Redis.Enabled)
	assert.Equal(t, "redis:6380", c.Cache.Redis.Addr)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "0xabc", c.Uniswap.PoolID)
}

func TestFlowConfig(t *testing.T) {
	c := Default()
	fc := c.FlowConfig()
	assert.Equal(t, c.Flow.WhaleThresholdUSD, fc.WhaleThresholdUSD)
	assert.Equal(t, c.Flow.ToleranceMs, fc.ToleranceMs)
	assert.Equal(t, c.Flow.RatioCap, fc.RatioCap)
}

func TestShippedConfigLoads(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, []string{"*"}, c.Server.AllowOrigins)
}
