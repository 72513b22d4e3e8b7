// Package config loads the settings of record effect programs with viper
// and builds the collaborators they describe.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/on-the-ground/effect_ive_records/client"
	"github.com/on-the-ground/effect_ive_records/client/cached"
	"github.com/on-the-ground/effect_ive_records/effects/policy"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Log   LogConfig
	Cache CacheConfig
	Retry RetryConfig
}

type LogConfig struct {
	// Format is "json" or "text".
	Format string
	// Level is a zap level name or "none".
	Level string
}

type CacheConfig struct {
	Enabled     bool
	NumCounters int64
	MaxCost     int64
	TTL         time.Duration
}

type RetryConfig struct {
	Times           int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// SetDefaults registers the default value of every key with v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyLogLevel, "info")

	v.SetDefault(KeyCacheEnabled, false)
	v.SetDefault(KeyCacheNumCounters, int64(1e5))
	v.SetDefault(KeyCacheMaxCost, int64(1<<20))
	v.SetDefault(KeyCacheTTL, time.Duration(0))

	v.SetDefault(KeyRetryTimes, 0)
	v.SetDefault(KeyRetryInitialInterval, 100*time.Millisecond)
	v.SetDefault(KeyRetryMaxInterval, 5*time.Second)
	v.SetDefault(KeyRetryMultiplier, 2.0)
}

// Load reads the configuration from v, falling back to the defaults and
// letting RECORDS_* environment variables override both.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(delimiter, "_"))
	v.AutomaticEnv()

	cfg := Config{
		Log: LogConfig{
			Format: v.GetString(KeyLogFormat),
			Level:  v.GetString(KeyLogLevel),
		},
		Cache: CacheConfig{
			Enabled:     v.GetBool(KeyCacheEnabled),
			NumCounters: v.GetInt64(KeyCacheNumCounters),
			MaxCost:     v.GetInt64(KeyCacheMaxCost),
			TTL:         v.GetDuration(KeyCacheTTL),
		},
		Retry: RetryConfig{
			Times:           v.GetInt(KeyRetryTimes),
			InitialInterval: v.GetDuration(KeyRetryInitialInterval),
			MaxInterval:     v.GetDuration(KeyRetryMaxInterval),
			Multiplier:      v.GetFloat64(KeyRetryMultiplier),
		},
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("%w: %s must be json or text, got %q", ErrInvalidConfig, KeyLogFormat, c.Log.Format)
	}
	if c.Retry.Times < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, KeyRetryTimes)
	}
	if c.Retry.MaxInterval < c.Retry.InitialInterval {
		return fmt.Errorf("%w: %s is below %s", ErrInvalidConfig, KeyRetryMaxInterval, KeyRetryInitialInterval)
	}
	if c.Cache.Enabled && (c.Cache.NumCounters <= 0 || c.Cache.MaxCost <= 0) {
		return fmt.Errorf("%w: %s and %s must be positive", ErrInvalidConfig, KeyCacheNumCounters, KeyCacheMaxCost)
	}
	return nil
}

// RetryPolicy is the policy Effect.Retry applies with these settings.
func (c Config) RetryPolicy() policy.Policy {
	return policy.Exponential{
		Times:      c.Retry.Times,
		Initial:    c.Retry.InitialInterval,
		Max:        c.Retry.MaxInterval,
		Multiplier: c.Retry.Multiplier,
	}
}

func (c Config) Logger() (*zap.Logger, error) {
	return NewLogger(c.Log.Format, c.Log.Level)
}

// Client decorates next as configured. The returned func releases what
// the decoration holds.
func (c Config) Client(next client.Client, logger *zap.Logger) (client.Client, func(), error) {
	if !c.Cache.Enabled {
		return next, func() {}, nil
	}
	cc, err := cached.New(next,
		cached.WithCapacity(c.Cache.NumCounters, c.Cache.MaxCost),
		cached.WithTTL(c.Cache.TTL),
		cached.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return cc, cc.Close, nil
}
