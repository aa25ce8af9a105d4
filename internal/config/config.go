// Package config provides configuration management for the race dynamics service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache" validate:"required"`
	CourseAPI CourseAPIConfig `mapstructure:"course_api"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// CacheConfig configures the prediction cache
type CacheConfig struct {
	Backend    string      `mapstructure:"backend" validate:"required,cachebackend"`
	TTLSeconds int         `mapstructure:"ttl_seconds" validate:"required,gt=0"`
	MaxItems   int         `mapstructure:"max_items" validate:"gte=0"`
	Redis      RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the shared redis cache backend
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db" validate:"gte=0"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// CourseAPIConfig configures the remote course characteristics provider
type CourseAPIConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	BaseURL        string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey         string  `mapstructure:"api_key"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"gte=0"`
}

// EngineConfig overrides prediction engine thresholds. Zero values keep the
// engine defaults.
type EngineConfig struct {
	DistanceBand            int     `mapstructure:"distance_band" validate:"gte=0"`
	MaxSamples              int     `mapstructure:"max_samples" validate:"gte=0"`
	HighConfidenceSamples   int     `mapstructure:"high_confidence_samples" validate:"gte=0"`
	MediumConfidenceSamples int     `mapstructure:"medium_confidence_samples" validate:"gte=0"`
	PoorFinishWindow        int     `mapstructure:"poor_finish_window" validate:"gte=0"`
	PoorFinishDeficit       float64 `mapstructure:"poor_finish_deficit" validate:"gte=0"`
	PoorFinishMinRuns       int     `mapstructure:"poor_finish_min_runs" validate:"gte=0"`
	LongStraight            float64 `mapstructure:"long_straight" validate:"gte=0"`
	ShortStraight           float64 `mapstructure:"short_straight" validate:"gte=0"`
	PostDisadvantageMargin  float64 `mapstructure:"post_disadvantage_margin" validate:"gte=0"`
	GroupThreshold          float64 `mapstructure:"group_threshold" validate:"gte=0"`
	IsolationGap            float64 `mapstructure:"isolation_gap" validate:"gte=0"`
	JitterAmplitude         float64 `mapstructure:"jitter_amplitude" validate:"gte=0"`
	// JitterSeed fixes the layout jitter. Zero derives a seed per race.
	JitterSeed int64 `mapstructure:"jitter_seed"`
}

// SchedulerConfig configures cache warming of upcoming races
type SchedulerConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	WarmSchedule  string `mapstructure:"warm_schedule" validate:"omitempty,cronspec"`
	Concurrency   int    `mapstructure:"concurrency" validate:"gte=0"`
	LookaheadDays int    `mapstructure:"lookahead_days" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SecretsConfig points at an optional AWS Secrets Manager overlay
type SecretsConfig struct {
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// CacheTTL returns the prediction cache TTL
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// CourseAPITimeout returns the course API request timeout
func (c *Config) CourseAPITimeout() time.Duration {
	if c.CourseAPI.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.CourseAPI.TimeoutSeconds) * time.Second
}
