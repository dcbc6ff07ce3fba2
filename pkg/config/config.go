package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"EthFlow/internal/services/flow"
	"EthFlow/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Log         struct {
		Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error fatal"`
		Format     string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output     string `yaml:"output" default:"stdout" validate:"oneof=stdout stderr"`
		TimeFormat string `yaml:"time_format" default:"2006-01-02T15:04:05Z07:00"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		AllowOrigins    []string      `yaml:"allow_origins"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	CoinGecko struct {
		BaseURL        string        `yaml:"base_url" default:"https://api.coingecko.com/api/v3" validate:"url"`
		APIKey         string        `yaml:"api_key"`
		CoinID         string        `yaml:"coin_id" default:"ethereum"`
		Timeout        time.Duration `yaml:"timeout" default:"15s"`
		CallsPerMinute int           `yaml:"calls_per_minute" default:"10" validate:"gte=1"`
		Burst          int           `yaml:"burst" default:"5" validate:"gte=1"`
	} `yaml:"coingecko"`
	Uniswap struct {
		SubgraphURL   string        `yaml:"subgraph_url" default:"https://api.thegraph.com/subgraphs/name/uniswap/uniswap-v3" validate:"url"`
		PoolID        string        `yaml:"pool_id" default:"0x8ad599c3a0ff1de082011efddc58f1908eb6e6d8"`
		Limit         int           `yaml:"limit" default:"1000" validate:"gte=1,lte=1000"`
		Window        time.Duration `yaml:"window" default:"24h"`
		Timeout       time.Duration `yaml:"timeout" default:"15s"`
		RetryAttempts int           `yaml:"retry_attempts" default:"3" validate:"gte=1,lte=10"`
	} `yaml:"uniswap"`
	Flow struct {
		WhaleThresholdUSD   float64       `yaml:"whale_threshold_usd" default:"500000" validate:"gt=0"`
		ToleranceMs         int64         `yaml:"tolerance_ms" default:"1800000" validate:"gte=1"`
		FlowDeltaThreshold  float64       `yaml:"flow_delta_threshold" default:"0.05" validate:"gte=0"`
		PriceDeltaThreshold float64       `yaml:"price_delta_threshold" default:"2" validate:"gte=0"`
		CacheTTL            time.Duration `yaml:"cache_ttl" default:"5m"`
		RatioCap            float64       `yaml:"ratio_cap" default:"10" validate:"gte=0"`
	} `yaml:"flow"`
	Fallback struct {
		Enabled bool  `yaml:"enabled" default:"true"`
		Seed    int64 `yaml:"seed"`
	} `yaml:"fallback"`
	Cache struct {
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"ethflow"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	API struct {
		Timeout          time.Duration `yaml:"timeout" default:"20s"`
		RefreshBurst     int           `yaml:"refresh_burst" default:"3" validate:"gte=1"`
		RefreshPerSecond float64       `yaml:"refresh_per_second" default:"0.2" validate:"gt=0"`
	} `yaml:"api"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("COINGECKO_API_KEY"); v != "" {
		c.CoinGecko.APIKey = v
	}
	if v := getenv("SUBGRAPH_URL"); v != "" {
		c.Uniswap.SubgraphURL = v
	}
	if v := getenv("UNISWAP_POOL_ID"); v != "" {
		c.Uniswap.PoolID = v
	}
	if v := getenv("WHALE_THRESHOLD_USD"); v != "" {
		c.Flow.WhaleThresholdUSD = util.ParseFloatDefault(v, c.Flow.WhaleThresholdUSD)
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := getenv("HTTP_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
}

var validate = validator.New()

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if !strings.HasPrefix(c.Uniswap.PoolID, "0x") {
		return fmt.Errorf("uniswap.pool_id must be a hex address, got '%s'", c.Uniswap.PoolID)
	}
	if c.Uniswap.Window < time.Hour {
		return fmt.Errorf("uniswap.window must be at least 1h, got %s", c.Uniswap.Window)
	}
	if c.Flow.CacheTTL <= 0 {
		return fmt.Errorf("flow.cache_ttl must be positive")
	}
	if c.Cache.Redis.Enabled {
		if _, _, err := net.SplitHostPort(c.Cache.Redis.Addr); err != nil {
			return fmt.Errorf("cache.redis.addr: %w", err)
		}
	}
	return nil
}

// FlowConfig returns the pipeline tunables.
func (c *Config) FlowConfig() flow.Config {
	return flow.Config{
		WhaleThresholdUSD:   c.Flow.WhaleThresholdUSD,
		ToleranceMs:         c.Flow.ToleranceMs,
		FlowDeltaThreshold:  c.Flow.FlowDeltaThreshold,
		PriceDeltaThreshold: c.Flow.PriceDeltaThreshold,
		CacheTTL:            c.Flow.CacheTTL,
		RatioCap:            c.Flow.RatioCap,
	}
}
