package datasource

import (
	"context"
	"time"

	"github.com/yourusername/courtside/internal/models"
)

// ScoreboardSource fetches scheduled and finished games for a date.
type ScoreboardSource interface {
	// FetchGames retrieves every game on the scoreboard for a date.
	FetchGames(ctx context.Context, date time.Time) ([]models.Game, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// InjurySource fetches the current league-wide injury report.
type InjurySource interface {
	// FetchInjuries retrieves reports keyed by team id. Teams whose feed
	// name cannot be mapped are dropped, not errored.
	FetchInjuries(ctx context.Context) (map[int]*models.TeamInjuryReport, error)

	// Name returns the name of the data source
	Name() string
}

// OddsSource fetches current moneyline quotes for upcoming games.
type OddsSource interface {
	// FetchMoneylines retrieves one quote per upcoming game, keyed by
	// (home id, away id).
	FetchMoneylines(ctx context.Context) (map[Matchup]models.MoneylineQuote, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// Matchup keys odds lookups by resolved team ids.
type Matchup struct {
	HomeID int
	AwayID int
}

// UsageReporter is an optional capability of sources that surface their
// upstream request quota.
type UsageReporter interface {
	Usage() (remaining, used int, ok bool)
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
