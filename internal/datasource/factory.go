package datasource

import (
	"fmt"
	"log"
)

// SourceType represents the type of data source
type SourceType string

const (
	// ESPN scoreboard and injury feed
	ESPNSourceType SourceType = "espn"
	// The Odds API moneyline feed
	OddsAPISourceType SourceType = "the_odds_api"
)

// Source is the surface common to every feed client
type Source interface {
	Name() string
}

// Factory creates feed clients sharing one team mapper
type Factory struct {
	logger     *log.Logger
	mapper     *TeamMapper
	oddsAPIKey string
}

// NewFactory creates a new data source factory. The odds API key may be
// empty, which leaves the odds source disabled.
func NewFactory(oddsAPIKey string, logger *log.Logger) *Factory {
	return &Factory{
		logger:     logger,
		mapper:     NewTeamMapper(),
		oddsAPIKey: oddsAPIKey,
	}
}

// Mapper returns the shared team mapper
func (f *Factory) Mapper() *TeamMapper {
	return f.mapper
}

// Create creates a new feed client based on the type
func (f *Factory) Create(sourceType SourceType, httpClient *RateLimitedHTTPClient) (Source, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}

	switch sourceType {
	case ESPNSourceType:
		return NewESPNClient(httpClient, f.mapper, f.logger), nil

	case OddsAPISourceType:
		return NewOddsAPIClient(httpClient, f.oddsAPIKey, f.mapper, f.logger), nil

	default:
		return nil, fmt.Errorf("unknown data source type: %s", sourceType)
	}
}

// CreateESPN creates the scoreboard and injury feed client
func (f *Factory) CreateESPN(httpClient *RateLimitedHTTPClient) (*ESPNClient, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}
	return NewESPNClient(httpClient, f.mapper, f.logger), nil
}

// CreateOddsAPI creates the moneyline feed client
func (f *Factory) CreateOddsAPI(httpClient *RateLimitedHTTPClient) (*OddsAPIClient, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}
	return NewOddsAPIClient(httpClient, f.oddsAPIKey, f.mapper, f.logger), nil
}

// ListAvailableSources returns the source types this factory can create
func (f *Factory) ListAvailableSources() []SourceType {
	available := []SourceType{ESPNSourceType}
	if f.oddsAPIKey != "" {
		available = append(available, OddsAPISourceType)
	}
	return available
}

// CreateAll creates every source with credentials configured. Sources
// missing credentials are skipped with a log line rather than an error.
func (f *Factory) CreateAll(httpClient *RateLimitedHTTPClient) ([]Source, error) {
	var sources []Source

	for _, sourceType := range []SourceType{ESPNSourceType, OddsAPISourceType} {
		if sourceType == OddsAPISourceType && f.oddsAPIKey == "" {
			if f.logger != nil {
				f.logger.Printf("Skipping disabled data source: %s", sourceType)
			}
			continue
		}

		source, err := f.Create(sourceType, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create data source %s: %w", sourceType, err)
		}

		sources = append(sources, source)
		if f.logger != nil {
			f.logger.Printf("Created data source: %s", source.Name())
		}
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no enabled data sources configured")
	}

	return sources, nil
}
