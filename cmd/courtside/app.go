package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/availability"
	"github.com/yourusername/courtside/internal/classifier"
	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/datasource"
	"github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/rating"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/tracing"
)

// bootstrap loads, overlays and validates configuration, then builds the
// application logger every command shares.
func bootstrap() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SecretsOverlayConfigured() {
		if err := config.LoadSecretsFromAWS(cfg, cfg.AWS.Region, cfg.AWS.SecretName); err != nil {
			return nil, nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment), nil
}

// buildFeeds creates the scoreboard and odds clients over one shared
// rate-limited HTTP client. The odds client stays disabled without a key.
func buildFeeds(cfg *config.Config) (*datasource.ESPNClient, *datasource.OddsAPIClient, error) {
	feedLog := log.New(os.Stdout, "datasource: ", log.LstdFlags)

	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.Datasource.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.Datasource.MaxRetries
	httpCfg.RateLimit = cfg.Datasource.RateLimitPerSecond
	httpCfg.CircuitBreakerMax = cfg.Datasource.CircuitBreakerMax
	httpClient := datasource.NewRateLimitedHTTPClient(httpCfg, feedLog)

	factory := datasource.NewFactory(cfg.OddsAPIKey(), feedLog)

	espn, err := factory.CreateESPN(httpClient)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scoreboard client: %w", err)
	}
	odds, err := factory.CreateOddsAPI(httpClient)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create odds client: %w", err)
	}

	return espn, odds, nil
}

// buildAvailability creates the injury availability service, or nil when
// the availability lane is disabled.
func buildAvailability(cfg *config.Config, fetcher availability.ReportFetcher, appLog *logrus.Logger) *availability.Service {
	if !cfg.Injuries.Enabled {
		return nil
	}

	calc := availability.NewCalculator(availability.CalculatorConfig{
		Enabled:             true,
		BaseMultiplier:      cfg.Injuries.AdjustmentMultiplier,
		MaxAdjustment:       cfg.Injuries.MaxAdjustment,
		MinAdjustment:       cfg.Injuries.MinAdjustment,
		UsePlayerImportance: cfg.Injuries.UsePlayerImportance,
	})

	cache := availability.NewCache(availability.CacheConfig{
		TTL:     time.Duration(cfg.Injuries.CacheTTLSeconds) * time.Second,
		Persist: cfg.Injuries.CachePersist,
		Path:    cfg.Injuries.CacheFile,
	})

	return availability.NewService(fetcher, calc, cache, cfg.Injuries.UseStaleCache, appLog)
}

// buildClassifier creates the cached win probability client.
func buildClassifier(cfg *config.Config, appLog *logrus.Logger) *classifier.CachedClient {
	return classifier.NewCachedClient(classifier.Config{
		URL:             cfg.Classifier.URL,
		TimeoutSeconds:  cfg.Classifier.TimeoutSeconds,
		ModelVersion:    cfg.Classifier.ModelVersion,
		CacheTTLSeconds: cfg.Classifier.CacheTTLSeconds,
		CacheMaxSize:    cfg.Classifier.CacheMaxSize,
	}, appLog)
}

func ratingConfig(cfg *config.Config) rating.Config {
	return rating.Config{
		InitialRating:  cfg.Rating.InitialRating,
		KFactor:        cfg.Rating.KFactor,
		HomeAdvantage:  cfg.Rating.HomeAdvantage,
		RegressionKeep: cfg.Rating.RegressionKeep,
	}
}

// openArchive connects to the Postgres archive and ensures its schema.
// Archive trouble is reported but never blocks a run; both returns are
// nil when the archive is disabled or unreachable.
func openArchive(ctx context.Context, cfg *config.Config, appLog *logrus.Logger) (*database.DB, *repository.Repositories) {
	if !cfg.ArchiveEnabled() {
		return nil, nil
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Error("Archive unavailable, continuing without it")
		return nil, nil
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Error("Archive unavailable, continuing without it")
		db.Close()
		return nil, nil
	}

	appLog.Info("Archive connection established")
	return db, repos
}

// initTracing configures X-Ray from the tracing config section.
func initTracing(cfg *config.Config, appLog *logrus.Logger) error {
	return tracing.Initialize(tracing.Config{
		ServiceName:    cfg.App.Name,
		ServiceVersion: Version,
		Enabled:        cfg.Tracing.Enabled,
		SamplingRate:   cfg.Tracing.SamplingRate,
		DaemonAddr:     cfg.Tracing.DaemonAddr,
	}, appLog)
}

// parseDateFlag parses a YYYY-MM-DD flag value; empty means unset.
func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return d, nil
}
