package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// WatchConfig holds configuration for `modmap watch`.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// ServeConfig holds configuration for the HTTP validation service.
type ServeConfig struct {
	Addr         string        `mapstructure:"addr"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
}

// Config holds all runtime configuration for a modmap invocation.
// Values are populated from .modmap.yaml, MODMAP_* env vars, and CLI flags.
type Config struct {
	LogLevel     string      `mapstructure:"log_level"`
	LogFormat    string      `mapstructure:"log_format"`
	EventsPath   string      `mapstructure:"events_path"`
	OutputFormat string      `mapstructure:"output_format"`
	Watch        WatchConfig `mapstructure:"watch"`
	Serve        ServeConfig `mapstructure:"serve"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "console")
	viper.SetDefault("events_path", "")
	viper.SetDefault("output_format", "json")
	viper.SetDefault("watch.debounce", 150*time.Millisecond)
	viper.SetDefault("serve.addr", ":8080")
	viper.SetDefault("serve.max_body_bytes", int64(4<<20))
	viper.SetDefault("serve.cache_ttl", 5*time.Minute)
	viper.SetDefault("serve.read_timeout", 10*time.Second)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("config: log_format must be console or json, got %q", c.LogFormat)
	}
	switch c.OutputFormat {
	case "json", "yaml", "toml":
	default:
		return fmt.Errorf("config: output_format must be json, yaml or toml, got %q", c.OutputFormat)
	}
	if c.Serve.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: serve.max_body_bytes must be positive, got %d", c.Serve.MaxBodyBytes)
	}
	return nil
}
