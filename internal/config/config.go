// Package config loads application configuration from config.yaml,
// JAVELIN_* environment variables, and built-in defaults.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/javelin-media/javelin/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Sources   SourcesConfig   `yaml:"sources" mapstructure:"sources"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
	Resolve   ResolveConfig   `yaml:"resolve" mapstructure:"resolve"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Priority  model.Policy    `yaml:"priority" mapstructure:"priority"`
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SourcesConfig selects the default source list and carries per-site
// credentials.
type SourcesConfig struct {
	Default           []string          `yaml:"default" mapstructure:"default"`
	JavlibraryCookies map[string]string `yaml:"javlibrary_cookies" mapstructure:"javlibrary_cookies"`
}

// RateLimitConfig spaces requests per domain.
type RateLimitConfig struct {
	DefaultDelayMs int            `yaml:"default_delay_ms" mapstructure:"default_delay_ms"`
	DomainDelaysMs map[string]int `yaml:"domain_delays_ms" mapstructure:"domain_delays_ms"`
}

// DefaultDelay returns the configured default inter-request delay.
func (c RateLimitConfig) DefaultDelay() time.Duration {
	return time.Duration(c.DefaultDelayMs) * time.Millisecond
}

// DomainDelays returns the per-domain overrides as durations.
func (c RateLimitConfig) DomainDelays() map[string]time.Duration {
	out := make(map[string]time.Duration, len(c.DomainDelaysMs))
	for d, ms := range c.DomainDelaysMs {
		out[d] = time.Duration(ms) * time.Millisecond
	}
	return out
}

// RetryConfig tunes transient-failure retries.
type RetryConfig struct {
	MaxRetries       int     `yaml:"max_retries" mapstructure:"max_retries"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
}

// ResolveConfig bounds the orchestrator.
type ResolveConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	TimeoutSecs   int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// CacheConfig configures the durable result cache.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Path     string `yaml:"path" mapstructure:"path"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// TTL returns the configured entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// HTTPConfig configures the shared fetch client.
type HTTPConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ServerConfig configures the JSON API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("JAVELIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sources.default", []string{"r18", "dmm", "jav"})
	v.SetDefault("rate_limit.default_delay_ms", 1000)
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.initial_backoff_ms", 1000)
	v.SetDefault("retry.max_backoff_ms", 30000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("resolve.max_concurrent", 4)
	v.SetDefault("resolve.timeout_secs", 120)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "cache/metadata.db")
	v.SetDefault("cache.ttl_hours", 720)
	v.SetDefault("http.timeout_secs", 30)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	def := model.DefaultPolicy()
	v.SetDefault("priority.title", def.Title)
	v.SetDefault("priority.description", def.Description)
	v.SetDefault("priority.release_date", def.ReleaseDate)
	v.SetDefault("priority.runtime", def.Runtime)
	v.SetDefault("priority.maker", def.Maker)
	v.SetDefault("priority.actress", def.Actress)
	v.SetDefault("priority.genre", def.Genre)
	v.SetDefault("priority.cover_url", def.CoverURL)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
