// Package config provides configuration management for the Courtside prediction engine.
package config

import (
	"fmt"
	"strings"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	State      StateConfig      `mapstructure:"state" validate:"required"`
	Datasource DatasourceConfig `mapstructure:"datasource" validate:"required"`
	OddsAPI    OddsAPIConfig    `mapstructure:"odds_api"`
	Injuries   InjuryConfig     `mapstructure:"injuries"`
	Rating     RatingConfig     `mapstructure:"rating" validate:"required"`
	Classifier ClassifierConfig `mapstructure:"classifier" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	AWS        AWSConfig        `mapstructure:"aws"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// StateConfig locates the durable tracker state on disk
type StateConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// DatasourceConfig tunes the shared HTTP client behind the upstream feeds
type DatasourceConfig struct {
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries         int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	CircuitBreakerMax  int     `mapstructure:"circuit_breaker_max" validate:"required,gt=0"`
}

// OddsAPIConfig represents The Odds API configuration. An empty key
// leaves the market feed disabled.
type OddsAPIConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// InjuryConfig represents availability adjustment configuration
type InjuryConfig struct {
	Enabled              bool    `mapstructure:"enabled"`
	AdjustmentMultiplier float64 `mapstructure:"adjustment_multiplier" validate:"omitempty,gt=0"`
	MaxAdjustment        float64 `mapstructure:"max_adjustment" validate:"lte=0"`
	MinAdjustment        float64 `mapstructure:"min_adjustment" validate:"lte=0"`
	UsePlayerImportance  bool    `mapstructure:"use_player_importance"`
	CacheTTLSeconds      int     `mapstructure:"cache_ttl_seconds" validate:"omitempty,gt=0"`
	CachePersist         bool    `mapstructure:"cache_persist"`
	CacheFile            string  `mapstructure:"cache_file"`
	FallbackOnError      bool    `mapstructure:"fallback_on_error"`
	UseStaleCache        bool    `mapstructure:"use_stale_cache"`
}

// RatingConfig represents Elo tuning configuration
type RatingConfig struct {
	InitialRating  float64 `mapstructure:"initial_rating" validate:"required,gt=0"`
	KFactor        float64 `mapstructure:"k_factor" validate:"required,gt=0"`
	HomeAdvantage  float64 `mapstructure:"home_advantage" validate:"gte=0"`
	RegressionKeep float64 `mapstructure:"regression_keep" validate:"gte=0,lte=1"`
}

// ClassifierConfig represents win probability service configuration
type ClassifierConfig struct {
	URL             string `mapstructure:"url" validate:"required,url"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	ModelVersion    string `mapstructure:"model_version"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"omitempty,gt=0"`
	CacheMaxSize    int    `mapstructure:"cache_max_size" validate:"omitempty,gt=0"`
}

// DatabaseConfig represents the optional Postgres archive configuration
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and health server configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig represents daemon cron schedules
type SchedulerConfig struct {
	UpdateCron       string `mapstructure:"update_cron"`
	AvailabilityCron string `mapstructure:"availability_cron"`
}

// TracingConfig represents the optional X-Ray tracing configuration
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	DaemonAddr   string  `mapstructure:"daemon_addr"`
	SamplingRate float64 `mapstructure:"sampling_rate" validate:"gte=0,lte=1"`
}

// AWSConfig represents the optional Secrets Manager overlay source
type AWSConfig struct {
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

// GetDatabaseDSN returns a PostgreSQL DSN string for the archive
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

// ArchiveEnabled reports whether the Postgres archive should be wired up.
func (c *Config) ArchiveEnabled() bool {
	return c.Database.Enabled && c.Database.Host != ""
}

// OddsAPIKey returns the configured key, treating template placeholders
// as unset so a copied sample config does not enable the metered feed.
func (c *Config) OddsAPIKey() string {
	key := strings.TrimSpace(c.OddsAPI.APIKey)
	if strings.EqualFold(key, "YOUR_API_KEY_HERE") {
		return ""
	}
	return key
}

// SecretsOverlayConfigured reports whether an AWS secrets overlay is set up.
func (c *Config) SecretsOverlayConfigured() bool {
	return c.AWS.Region != "" && c.AWS.SecretName != ""
}
