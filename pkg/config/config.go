// Package config loads sink-filling parameters from files and the
// environment.
//
// Parameter files may be TOML, YAML or JSON. Every key can be overridden by
// an environment variable with the SINKFILL_ prefix, dots replaced by
// underscores (SINKFILL_CACHE_DIR for cache.dir). The loaded values double
// as the key-value parameter source a sinkfill.Filler reads
// ELEVATION_FIELD_NAME from.
package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Parameter keys.
const (
	KeyElevationField = "ELEVATION_FIELD_NAME"
	KeySlope          = "SLOPE"
	KeyCacheDir       = "cache.dir"
	KeyCacheTTL       = "cache.ttl"
	KeyCacheDisabled  = "cache.disabled"
	KeyLogLevel       = "log.level"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "SINKFILL"

// Config holds all fill configuration.
type Config struct {
	ElevationField string      `mapstructure:"elevation_field_name"`
	Slope          string      `mapstructure:"slope"`
	Cache          CacheConfig `mapstructure:"cache"`
	Log            LogConfig   `mapstructure:"log"`

	v *viper.Viper
}

// CacheConfig controls the fill result cache.
type CacheConfig struct {
	Dir      string        `mapstructure:"dir"`
	TTL      time.Duration `mapstructure:"ttl"`
	Disabled bool          `mapstructure:"disabled"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Params returns the underlying key-value source. It satisfies
// sinkfill.Params.
func (c *Config) Params() *viper.Viper { return c.v }

// Set overrides key, keeping the typed fields and the parameter source in
// step. Command-line flags go through Set.
func (c *Config) Set(key, value string) error {
	c.v.Set(key, value)
	return c.v.Unmarshal(c)
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Slope != "" {
		switch strings.ToLower(c.Slope) {
		case "true", "false", "none":
		default:
			s, err := strconv.ParseFloat(c.Slope, 64)
			switch {
			case err != nil:
				warnings = append(warnings, fmt.Sprintf("slope %q is neither a boolean nor a number", c.Slope))
			case s < 0 || math.IsNaN(s):
				warnings = append(warnings, fmt.Sprintf("slope %g is negative", s))
			case s > 1e-2:
				warnings = append(warnings, fmt.Sprintf("slope %g is steep for a fill gradient; drainage checks will back it off", s))
			}
		}
	}

	if c.Cache.TTL < 0 {
		warnings = append(warnings, fmt.Sprintf("cache ttl %s is negative", c.Cache.TTL))
	}

	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			warnings = append(warnings, fmt.Sprintf("unknown log level %q", c.Log.Level))
		}
	}

	return warnings
}

// Load reads configuration from the file at path and the environment. An
// empty path reads the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeySlope, "false")
	v.SetDefault(KeyCacheTTL, "720h")
	v.SetDefault(KeyLogLevel, "info")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only answers keys viper already knows about.
	for _, key := range []string{KeyElevationField, KeyCacheDir, KeyCacheDisabled} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}
