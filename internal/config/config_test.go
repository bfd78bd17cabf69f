// Package config provides configuration management for the Courtside prediction engine.
package config

import (
	"os"
	"strings"
	"testing"
)

const (
	validConfigPath            = "testdata/valid_config.yaml"
	expansionConfigPath        = "testdata/expansion_config.yaml"
	expansionConfigMissingPath = "testdata/expansion_config_missing.yaml"
	nonexistentConfigPath      = "testdata/nonexistent_config.yaml"

	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"

	courtsideName  = "courtside"
	developmentEnv = "development"
	invalidEnv     = "invalid"
	postgresPrefix = "postgres://"

	testAppName         = "test-app"
	testDBPassword      = "TEST_DB_PASSWORD"
	testMissingVar      = "TEST_MISSING_VAR"
	expandedSecretValue = "expanded_secret_value"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != courtsideName {
		t.Errorf("expected app name '%s', got '%s'", courtsideName, cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.State.Dir != "data/state" {
		t.Errorf("expected state dir 'data/state', got '%s'", cfg.State.Dir)
	}

	if cfg.Datasource.TimeoutSeconds != 10 {
		t.Errorf("expected datasource timeout 10, got %d", cfg.Datasource.TimeoutSeconds)
	}

	if cfg.Rating.InitialRating != 1500.0 {
		t.Errorf("expected initial rating 1500, got %v", cfg.Rating.InitialRating)
	}

	if cfg.Classifier.ModelVersion != "v3" {
		t.Errorf("expected model version 'v3', got '%s'", cfg.Classifier.ModelVersion)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadWithDefaultsMissingFile tests that a bare environment still boots
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != courtsideName {
		t.Errorf("expected default app name '%s', got '%s'", courtsideName, cfg.App.Name)
	}

	if cfg.Rating.KFactor != 20.0 {
		t.Errorf("expected default k_factor 20, got %v", cfg.Rating.KFactor)
	}

	if cfg.Injuries.MaxAdjustment != -100.0 {
		t.Errorf("expected default max_adjustment -100, got %v", cfg.Injuries.MaxAdjustment)
	}

	if !cfg.Metrics.Enabled {
		t.Error("expected metrics enabled by default")
	}

	if cfg.Tracing.Enabled {
		t.Error("expected tracing disabled by default")
	}

	if cfg.Tracing.DaemonAddr != "127.0.0.1:2000" {
		t.Errorf("expected default daemon address, got %q", cfg.Tracing.DaemonAddr)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	// Set an environment variable
	os.Setenv("COURTSIDE_APP_NAME", testAppName)
	defer os.Unsetenv("COURTSIDE_APP_NAME")

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	err = Validate(cfg)
	if err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = invalidEnv
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

// TestValidateInvalidLogLevel tests validation of invalid log level
func TestValidateInvalidLogLevel(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.LogLevel = "loud"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
}

// TestValidateAdjustmentBounds tests the injury adjustment ordering rule
func TestValidateAdjustmentBounds(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	// Floor weaker than the snap threshold is a misconfiguration
	cfg.Injuries.MaxAdjustment = -2.0
	cfg.Injuries.MinAdjustment = -5.0
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error when max_adjustment is above min_adjustment")
	}

	// Positive adjustments are rejected outright
	cfg.Injuries.MaxAdjustment = 10.0
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for positive max_adjustment")
	}
}

// TestValidateInvalidCron tests rejection of a malformed schedule
func TestValidateInvalidCron(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Scheduler.UpdateCron = "every day at six"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for malformed cron spec")
	}

	if !strings.Contains(err.Error(), "update_cron") {
		t.Errorf("expected update_cron in error, got: %v", err)
	}
}

// TestValidateArchiveRequiresHost tests the enabled-archive requirements
func TestValidateArchiveRequiresHost(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Database.Enabled = true
	cfg.Database.Host = ""
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for enabled archive without host")
	}
}

// TestGetDatabaseDSN tests DSN generation
func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	dsn := cfg.GetDatabaseDSN()
	if dsn == "" {
		t.Fatal("expected non-empty DSN")
	}

	if !strings.HasPrefix(dsn, postgresPrefix) {
		t.Errorf("expected DSN to start with '%s', got '%s'", postgresPrefix, dsn)
	}

	if !strings.Contains(dsn, "sslmode=disable") {
		t.Errorf("expected sslmode in DSN, got '%s'", dsn)
	}
}

// TestEnvironmentChecks tests the environment predicate helpers
func TestEnvironmentChecks(t *testing.T) {
	cfg := &Config{App: AppConfig{Environment: developmentEnv}}
	if !cfg.IsDevelopment() || cfg.IsStaging() || cfg.IsProduction() {
		t.Error("expected development environment predicates")
	}

	cfg.App.Environment = "staging"
	if !cfg.IsStaging() || cfg.IsDevelopment() {
		t.Error("expected staging environment predicates")
	}

	cfg.App.Environment = "production"
	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Error("expected production environment predicates")
	}
}

// TestOddsAPIKeyPlaceholder tests that template keys read as unset
func TestOddsAPIKeyPlaceholder(t *testing.T) {
	cfg := &Config{}

	cfg.OddsAPI.APIKey = "YOUR_API_KEY_HERE"
	if cfg.OddsAPIKey() != "" {
		t.Error("expected placeholder key to read as unset")
	}

	cfg.OddsAPI.APIKey = "  abc123  "
	if cfg.OddsAPIKey() != "abc123" {
		t.Errorf("expected trimmed key, got %q", cfg.OddsAPIKey())
	}

	cfg.OddsAPI.APIKey = ""
	if cfg.OddsAPIKey() != "" {
		t.Error("expected empty key to stay empty")
	}
}

// TestValidateEnvironmentPlaceholderKey tests production credential hygiene
func TestValidateEnvironmentPlaceholderKey(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = "production"
	cfg.OddsAPI.APIKey = "YOUR_API_KEY_HERE"

	err = ValidateEnvironment(cfg)
	if err == nil {
		t.Fatal("expected error for placeholder key in production")
	}
}

// TestLoadConfigEnvironmentVariableExpansion tests environment variable expansion in config file
func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	// Set environment variable
	os.Setenv(testDBPassword, expandedSecretValue)
	defer os.Unsetenv(testDBPassword)

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config with expansion, got %v", err)
	}

	if cfg.Database.Password != expandedSecretValue {
		t.Errorf("expected password '%s' from environment expansion, got '%s'", expandedSecretValue, cfg.Database.Password)
	}
}

// TestLoadConfigMissingEnvironmentVariable tests handling of missing environment variables
func TestLoadConfigMissingEnvironmentVariable(t *testing.T) {
	// Ensure environment variable is not set
	os.Unsetenv(testMissingVar)

	cfg, err := Load(expansionConfigMissingPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	// os.ExpandEnv replaces an unset ${VAR} with the empty string
	if cfg.Database.Password != "" {
		t.Errorf("expected empty password for unset variable, got %q", cfg.Database.Password)
	}
}

// TestSecretsOverlay tests applying a secrets overlay to the configuration
func TestSecretsOverlay(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Password = "from-file"
	cfg.OddsAPI.APIKey = ""

	overlaySecretsOnConfig(cfg, &SecretsOverlay{
		DatabasePassword: "from-secrets",
		OddsAPIKey:       "key-from-secrets",
	})

	if cfg.Database.Password != "from-secrets" {
		t.Errorf("expected overlaid password, got %q", cfg.Database.Password)
	}
	if cfg.OddsAPI.APIKey != "key-from-secrets" {
		t.Errorf("expected overlaid odds key, got %q", cfg.OddsAPI.APIKey)
	}

	// Empty overlay fields leave existing values in place
	overlaySecretsOnConfig(cfg, &SecretsOverlay{})
	if cfg.Database.Password != "from-secrets" {
		t.Error("expected empty overlay to preserve password")
	}
}
