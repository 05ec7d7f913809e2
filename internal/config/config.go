// Package config loads the overview service configuration with viper.
// Values come from an optional YAML file and APP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Page     PageConfig     `mapstructure:"page"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// AppConfig holds server settings.
type AppConfig struct {
	Name     string `mapstructure:"name" validate:"required"`
	Env      string `mapstructure:"env" validate:"oneof=development staging production"`
	Addr     string `mapstructure:"addr" validate:"required"`
	BasePath string `mapstructure:"base_path" validate:"required,startswith=/"`
}

// UpstreamConfig points at the aggregate endpoint.
type UpstreamConfig struct {
	BaseURL       string        `mapstructure:"base_url" validate:"omitempty,url"`
	Path          string        `mapstructure:"path" validate:"required,startswith=/"`
	APIKey        string        `mapstructure:"api_key"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	OnlyCertified bool          `mapstructure:"only_certified"`
	Mock          bool          `mapstructure:"mock"`
	Retry         RetryConfig   `mapstructure:"retry"`
	CB            CBConfig      `mapstructure:"circuit_breaker"`
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"gte=0"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio" validate:"gte=0,lte=1"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

// PageConfig controls page sessions and chart rendering.
type PageConfig struct {
	Manifest      string        `mapstructure:"manifest"`
	SessionTTL    time.Duration `mapstructure:"session_ttl" validate:"gte=0"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
	ChartTheme    string        `mapstructure:"chart_theme"`
	AssetsHost    string        `mapstructure:"assets_host"`
	ChartCacheTTL time.Duration `mapstructure:"chart_cache_ttl" validate:"gte=0"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Output string `mapstructure:"output"`
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn" validate:"required_if=Enabled true"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig controls the Redis cache of upstream aggregates.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" validate:"required_if=Enabled true"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "go-overview")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.addr", ":9876")
	v.SetDefault("app.base_path", "/visao-geral")

	v.SetDefault("upstream.base_url", "http://localhost:8000")
	v.SetDefault("upstream.path", "/api/visao-geral")
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("upstream.timeout", "10s")
	v.SetDefault("upstream.only_certified", false)
	v.SetDefault("upstream.mock", false)
	v.SetDefault("upstream.retry.max_attempts", 0)
	v.SetDefault("upstream.retry.wait_time", "500ms")
	v.SetDefault("upstream.retry.max_wait_time", "2s")
	v.SetDefault("upstream.circuit_breaker.max_requests", 1)
	v.SetDefault("upstream.circuit_breaker.interval", "60s")
	v.SetDefault("upstream.circuit_breaker.timeout", "30s")
	v.SetDefault("upstream.circuit_breaker.failure_ratio", 0.6)
	v.SetDefault("upstream.circuit_breaker.min_requests", 3)

	v.SetDefault("page.manifest", "")
	v.SetDefault("page.session_ttl", "30m")
	v.SetDefault("page.sweep_interval", "1m")
	v.SetDefault("page.chart_theme", "")
	v.SetDefault("page.assets_host", "")
	v.SetDefault("page.chart_cache_ttl", "5m")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("cache.key_prefix", "overview:aggregate")
}
