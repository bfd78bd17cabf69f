package availability

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/features"
	"github.com/yourusername/courtside/internal/models"
)

// ReportFetcher fetches the league-wide injury report keyed by team id.
type ReportFetcher interface {
	FetchInjuries(ctx context.Context) (map[int]*models.TeamInjuryReport, error)
}

// Service turns raw injury reports into per-team availability data for
// feature assembly. Reads degrade in order: live report, fresh cache
// entry, stale cache entry (when allowed), then nothing.
//
// The feed only lists teams carrying injuries, so after a successful
// refresh an absent team means healthy, not unknown.
type Service struct {
	fetcher       ReportFetcher
	calc          *Calculator
	cache         *Cache
	useStaleCache bool
	logger        *logrus.Logger

	mu          sync.RWMutex
	reports     map[int]*models.TeamInjuryReport
	lastRefresh time.Time
}

// NewService creates an availability service. cache may be nil to skip
// cache fallback entirely.
func NewService(fetcher ReportFetcher, calc *Calculator, cache *Cache, useStaleCache bool, logger *logrus.Logger) *Service {
	if calc == nil {
		calc = NewCalculator(DefaultCalculatorConfig())
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		fetcher:       fetcher,
		calc:          calc,
		cache:         cache,
		useStaleCache: useStaleCache,
		logger:        logger,
	}
}

// Refresh fetches the current injury report and rebuilds cache entries.
// On error the previous refresh, if any, stays in effect.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	reports, err := s.fetcher.FetchInjuries(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Injury report refresh failed")
		return 0, err
	}

	s.mu.Lock()
	s.reports = reports
	s.lastRefresh = time.Now()
	s.mu.Unlock()

	if s.cache != nil {
		for teamID, report := range reports {
			s.cache.Set(s.calc.BuildEntry(teamID, report))
		}
	}

	s.logger.WithField("teams", len(reports)).Info("Injury report refreshed")
	return len(reports), nil
}

// Availability reports one team's availability for feature assembly.
func (s *Service) Availability(teamID int) (features.TeamAvailability, bool) {
	s.mu.RLock()
	reports := s.reports
	refreshed := !s.lastRefresh.IsZero()
	s.mu.RUnlock()

	if refreshed {
		report, ok := reports[teamID]
		if !ok {
			// Healthy team, nothing to adjust
			return features.TeamAvailability{}, true
		}
		return features.TeamAvailability{
			Adjustment:          s.calc.Adjustment(report),
			PlayersOut:          report.PlayersOut(),
			PlayersQuestionable: report.PlayersQuestionable(),
			Severity:            report.TotalSeverity(),
		}, true
	}

	if s.cache != nil {
		if entry, ok := s.cache.Get(teamID, false); ok {
			return availabilityFromEntry(entry), true
		}
		if s.useStaleCache {
			if entry, ok := s.cache.Get(teamID, true); ok {
				FallbacksTotal.WithLabelValues("stale").Inc()
				s.logger.WithField("team_id", teamID).Debug("Using stale cached availability")
				return availabilityFromEntry(entry), true
			}
		}
	}

	FallbacksTotal.WithLabelValues("zero").Inc()
	return features.TeamAvailability{}, false
}

// Note returns a short display summary of a team's absences, empty when
// nothing is known.
func (s *Service) Note(teamID int) string {
	s.mu.RLock()
	report, ok := s.reports[teamID]
	s.mu.RUnlock()

	if ok {
		return strings.Join(Summarize(report), ", ")
	}

	if s.cache != nil {
		if entry, found := s.cache.Get(teamID, s.useStaleCache); found {
			return strings.Join(entry.Summary, ", ")
		}
	}

	return ""
}

// ReportFor returns the live report from the last refresh, if any.
func (s *Service) ReportFor(teamID int) (*models.TeamInjuryReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[teamID]
	return report, ok
}

// LastRefresh returns when the report was last fetched successfully.
func (s *Service) LastRefresh() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh, !s.lastRefresh.IsZero()
}

// Cache exposes the underlying cache for status reporting, nil when
// caching is disabled.
func (s *Service) Cache() *Cache {
	return s.cache
}

func availabilityFromEntry(entry Entry) features.TeamAvailability {
	// Cache entries do not carry the out/questionable split, only the
	// aggregate adjustment and severity.
	return features.TeamAvailability{
		Adjustment: entry.Adjustment,
		Severity:   entry.Severity,
	}
}
