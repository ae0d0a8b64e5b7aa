package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"liquidityBook/internal/binmath"
	"liquidityBook/internal/rangemap"
)

// EnvPrefix prefixes every environment override, e.g. LBENGINE_LOG_LEVEL.
const EnvPrefix = "LBENGINE"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the engine settings shared by range, distribute and autofill.
type Config struct {
	DisplayWindowSpan float64
	MaxBinCount       int
	MaxBinOffset      int64

	// Snapshot is a snapshot file path. When empty the snapshot of Pool is
	// loaded from PGDSN.
	Snapshot string
	PGDSN    string
	Pool     string

	Out      string
	LogLevel string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"display-window-span": rangemap.DefaultDisplayWindowSpan,
		"max-bin-count":       rangemap.DefaultMaxBinCount,
		"max-bin-offset":      binmath.DefaultMaxOffset,
		"out":                 "",
		"log-level":           "info",
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DisplayWindowSpan: v.GetFloat64("display-window-span"),
		MaxBinCount:       v.GetInt("max-bin-count"),
		MaxBinOffset:      v.GetInt64("max-bin-offset"),
		Snapshot:          strings.TrimSpace(v.GetString("snapshot")),
		PGDSN:             strings.TrimSpace(v.GetString("pg-dsn")),
		Pool:              strings.TrimSpace(v.GetString("pool")),
		Out:               v.GetString("out"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}

// Range returns the range mapping section.
func (c Config) Range() rangemap.Config {
	return rangemap.Config{
		DisplayWindowSpan: c.DisplayWindowSpan,
		MaxBinCount:       c.MaxBinCount,
		MaxOffset:         c.MaxBinOffset,
	}
}

// Validate checks the engine settings and the snapshot source.
func (c Config) Validate() error {
	if err := c.Range().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Snapshot == "" && c.PGDSN == "" {
		return fmt.Errorf("%w: snapshot file or pg-dsn is required", ErrInvalidConfig)
	}
	if c.Snapshot == "" && c.Pool == "" {
		return fmt.Errorf("%w: pool is required when loading from postgres", ErrInvalidConfig)
	}
	return nil
}

// FetchConfig holds configuration for the snapshot command.
type FetchConfig struct {
	RPCURL       string
	Pair         string
	Pool         string
	Radius       int64
	QuoteUSD     float64
	BatchSize    int
	Concurrency  int
	MaxRetries   int
	RetryBackoff time.Duration
	Out          string
	PGDSN        string
	LogLevel     string
}

// LoadFetch merges config file, environment variables, and flags into FetchConfig.
func LoadFetch(cfgFile string, flags *pflag.FlagSet) (FetchConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"radius":        int64(100),
		"quote-usd":     1.0,
		"batch-size":    25,
		"concurrency":   4,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"out":           "./data/snapshot.json",
		"log-level":     "info",
	})
	if err != nil {
		return FetchConfig{}, err
	}

	cfg := FetchConfig{
		RPCURL:       strings.TrimSpace(v.GetString("rpc")),
		Pair:         strings.TrimSpace(v.GetString("pair")),
		Pool:         strings.TrimSpace(v.GetString("pool")),
		Radius:       v.GetInt64("radius"),
		QuoteUSD:     v.GetFloat64("quote-usd"),
		BatchSize:    v.GetInt("batch-size"),
		Concurrency:  v.GetInt("concurrency"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		Out:          v.GetString("out"),
		PGDSN:        strings.TrimSpace(v.GetString("pg-dsn")),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate checks the fetch settings.
func (c FetchConfig) Validate() error {
	switch {
	case c.RPCURL == "":
		return fmt.Errorf("%w: rpc url is required", ErrInvalidConfig)
	case c.Pair == "":
		return fmt.Errorf("%w: pair address is required", ErrInvalidConfig)
	case c.Radius < 1 || c.Radius > binmath.DefaultMaxOffset:
		return fmt.Errorf("%w: radius must be in [1, %d]", ErrInvalidConfig, binmath.DefaultMaxOffset)
	case math.IsNaN(c.QuoteUSD) || c.QuoteUSD < 0:
		return fmt.Errorf("%w: quote-usd must be >= 0", ErrInvalidConfig)
	case c.BatchSize < 1:
		return fmt.Errorf("%w: batch size must be >= 1", ErrInvalidConfig)
	case c.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be >= 1", ErrInvalidConfig)
	case c.Out == "" && c.PGDSN == "":
		return fmt.Errorf("%w: out or pg-dsn is required", ErrInvalidConfig)
	}
	return nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]any) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}
