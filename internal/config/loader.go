// Package config provides configuration management for the Courtside prediction engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	// Create a new viper instance
	v := viper.New()
	v.SetConfigType("yaml")

	// Read the expanded configuration
	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set environment variable prefix
	v.SetEnvPrefix("COURTSIDE")

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal configuration into Config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields
// and tolerates a missing config file, so a bare environment still boots.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	// Set configuration file path with default
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")

	// Set environment variable prefix
	v.SetEnvPrefix("COURTSIDE")

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		// Expand environment variables in the configuration (${VAR} syntax)
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	// Unmarshal configuration into Config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults registers the full default tree. Values mirror the tuning
// the engine ships with so a file only needs to state overrides.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "courtside")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("state.dir", "data/state")

	v.SetDefault("datasource.timeout_seconds", 10)
	v.SetDefault("datasource.max_retries", 3)
	v.SetDefault("datasource.rate_limit_per_second", 2.0)
	v.SetDefault("datasource.circuit_breaker_max", 5)

	v.SetDefault("injuries.enabled", true)
	v.SetDefault("injuries.adjustment_multiplier", 20.0)
	v.SetDefault("injuries.max_adjustment", -100.0)
	v.SetDefault("injuries.min_adjustment", -5.0)
	v.SetDefault("injuries.use_player_importance", true)
	v.SetDefault("injuries.cache_ttl_seconds", 14400)
	v.SetDefault("injuries.cache_persist", false)
	v.SetDefault("injuries.cache_file", ".cache/injury_cache.json")
	v.SetDefault("injuries.fallback_on_error", true)
	v.SetDefault("injuries.use_stale_cache", true)

	v.SetDefault("rating.initial_rating", 1500.0)
	v.SetDefault("rating.k_factor", 20.0)
	v.SetDefault("rating.home_advantage", 70.0)
	v.SetDefault("rating.regression_keep", 0.7)

	v.SetDefault("classifier.url", "http://localhost:8090")
	v.SetDefault("classifier.timeout_seconds", 10)
	v.SetDefault("classifier.cache_ttl_seconds", 3600)
	v.SetDefault("classifier.cache_max_size", 1024)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 5)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("scheduler.update_cron", "30 6 * * *")
	v.SetDefault("scheduler.availability_cron", "0 */4 * * *")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.daemon_addr", "127.0.0.1:2000")
	v.SetDefault("tracing.sampling_rate", 0.05)
}

// ReloadFromEnv reloads the configuration from the path named in
// COURTSIDE_CONFIG_PATH, when set.
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv("COURTSIDE_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}

	return nil
}
