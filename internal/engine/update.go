// Package engine provides result processing pipelines.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/datasource"
	"github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/rating"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/state"
)

// DefaultMaxCatchUpDays bounds how many pending dates one run will walk.
// A longer backlog is processed across successive runs.
const DefaultMaxCatchUpDays = 30

// UpdateConfig configures a single update run.
type UpdateConfig struct {
	// Date is the last date to fold in. Zero means yesterday; finals for
	// the current date may still be in progress.
	Date time.Time

	// From overrides the resume point derived from metadata.
	From time.Time

	// Force reprocesses Date even when metadata says it was already done.
	Force bool

	// DryRun previews rating movement without mutating state.
	DryRun bool

	// MaxCatchUpDays caps the dates walked in one run. Zero or negative
	// uses DefaultMaxCatchUpDays.
	MaxCatchUpDays int
}

// UpdateReport summarizes an update run.
type UpdateReport struct {
	RunID          uuid.UUID       `json:"run_id"`
	FromDate       string          `json:"from_date,omitempty"`
	ToDate         string          `json:"to_date,omitempty"`
	DatesProcessed int             `json:"dates_processed"`
	GamesProcessed int             `json:"games_processed"`
	GamesSkipped   int             `json:"games_skipped"`
	GamesSeen      int             `json:"games_seen"`
	LifetimeGames  int             `json:"lifetime_games,omitempty"`
	UpToDate       bool            `json:"up_to_date,omitempty"`
	DryRun         bool            `json:"dry_run,omitempty"`
	Previews       []ResultPreview `json:"previews,omitempty"`
	Duration       time.Duration   `json:"duration"`
	CompletedAt    time.Time       `json:"completed_at"`
}

// UpdatePipeline folds completed games into the persisted engine state,
// walking every pending date from the metadata resume point.
type UpdatePipeline struct {
	store     *state.Store
	scores    datasource.ScoreboardSource
	ratingCfg rating.Config
	archive   *repository.Repositories
	logger    *logrus.Logger
	plog      *logger.PipelineLogger
	feedLog   *logger.FeedLogger
}

// NewUpdatePipeline creates an update pipeline over the given store and
// scoreboard source.
func NewUpdatePipeline(store *state.Store, scores datasource.ScoreboardSource, ratingCfg rating.Config, baseLogger *logrus.Logger) *UpdatePipeline {
	if baseLogger == nil {
		baseLogger = logrus.StandardLogger()
	}
	return &UpdatePipeline{
		store:     store,
		scores:    scores,
		ratingCfg: ratingCfg,
		logger:    baseLogger,
		plog:      logger.NewPipelineLogger(baseLogger),
		feedLog:   logger.NewFeedLogger(baseLogger),
	}
}

// SetArchive attaches the optional Postgres archive. Processed games are
// mirrored there after each date; archive failures never fail the run.
func (p *UpdatePipeline) SetArchive(repos *repository.Repositories) {
	p.archive = repos
}

// Run executes one update run. Progress reached before a feed failure is
// saved, so the next run resumes from the failed date.
func (p *UpdatePipeline) Run(ctx context.Context, cfg UpdateConfig) (*UpdateReport, error) {
	start := time.Now()
	report := &UpdateReport{RunID: uuid.New(), DryRun: cfg.DryRun}

	ratings, form, err := p.store.Load(p.ratingCfg)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	from, to, pending := p.window(cfg)
	if pending == 0 {
		report.UpToDate = true
		report.Duration = time.Since(start)
		report.CompletedAt = time.Now()
		p.logger.WithField("last_processed", formatDate(from)).Info("State already up to date")
		return report, nil
	}

	report.FromDate = formatDate(from)
	report.ToDate = formatDate(to)
	p.plog.LogUpdateRunStarted(report.FromDate, report.ToDate, pending)
	metrics.UpdatePendingDays(float64(pending))

	processor := NewResultProcessor(ratings, form, p.logger)

	var runErr error
	var lastApplied time.Time

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		games, err := fetchScoreboard(ctx, p.scores, d, p.feedLog)
		if err != nil {
			runErr = fmt.Errorf("fetch scoreboard for %s: %w", formatDate(d), err)
			p.plog.LogUpdateRunFailed(formatDate(d), err.Error())
			break
		}
		report.GamesSeen += len(games)

		if cfg.DryRun {
			for i := range games {
				g := &games[i]
				if !g.IsFinal() {
					continue
				}
				report.Previews = append(report.Previews, processor.Preview(g))
			}
			report.DatesProcessed++
			continue
		}

		applied, skipped := 0, 0
		var archived []*models.Game
		for i := range games {
			g := &games[i]
			if !g.IsFinal() {
				skipped++
				metrics.RecordGameSkipped()
				continue
			}

			pre := processor.Preview(g)
			if !processor.Process(g, cfg.Force) {
				skipped++
				metrics.RecordGameSkipped()
				continue
			}
			applied++
			archived = append(archived, g)
			metrics.RecordGameProcessed()
			metrics.RecordEloShift(pre.DeltaHome)
			p.plog.LogGameProcessed(g.GameID, g.HomeTeam, g.AwayTeam, g.HomeScore, g.AwayScore, pre.DeltaHome)
		}

		p.archiveGames(ctx, formatDate(d), archived)
		p.plog.LogDateProcessed(formatDate(d), applied, skipped)
		report.DatesProcessed++
		report.GamesProcessed += applied
		report.GamesSkipped += skipped
		lastApplied = d
	}

	if !cfg.DryRun && !lastApplied.IsZero() {
		if err := p.store.Save(ratings, form, true); err != nil {
			return report, fmt.Errorf("save state: %w", err)
		}
		metrics.RecordStateSave()

		if err := p.store.SetLastProcessedDate(lastApplied); err != nil {
			return report, fmt.Errorf("advance metadata: %w", err)
		}
		total, err := p.store.IncrementGamesProcessed(report.GamesProcessed)
		if err != nil {
			return report, fmt.Errorf("advance metadata: %w", err)
		}
		report.LifetimeGames = total

		p.plog.LogStateSaved(p.store.Dir(), ratings.Len(), formatDate(lastApplied), true)
		p.refreshStateGauges(ratings, lastApplied, to)
	}

	report.Duration = time.Since(start)
	report.CompletedAt = time.Now()
	metrics.RecordUpdateRunDuration(report.Duration.Seconds())
	p.plog.LogUpdateRunCompleted(report.DatesProcessed, report.GamesProcessed, report.GamesSkipped, report.Duration.Seconds())

	return report, runErr
}

// archiveGames mirrors one date's applied games into the Postgres
// archive. Clearing the date first keeps reruns idempotent.
func (p *UpdatePipeline) archiveGames(ctx context.Context, gameDate string, games []*models.Game) {
	if p.archive == nil || len(games) == 0 {
		return
	}

	if _, err := p.archive.Games.DeleteByDate(ctx, gameDate); err != nil {
		metrics.RecordArchiveWrite("games", "error")
		p.logger.WithError(err).WithField("game_date", gameDate).Warn("Failed to clear archived games, continuing")
		return
	}
	if err := p.archive.Games.InsertBatch(ctx, games); err != nil {
		metrics.RecordArchiveWrite("games", "error")
		p.logger.WithError(err).WithField("game_date", gameDate).Warn("Failed to archive games, continuing")
		return
	}

	metrics.RecordArchiveWrite("games", "success")
	p.logger.WithFields(logrus.Fields{
		"game_date": gameDate,
		"games":     len(games),
	}).Debug("Archived processed games")
}

// RestoreBackup rolls both tracker files back to their .json.bak
// siblings. Returns false when no complete backup pair exists.
func (p *UpdatePipeline) RestoreBackup() (bool, error) {
	restored, err := p.store.RestoreBackup()
	if err != nil {
		return false, err
	}
	if restored {
		metrics.RecordBackupRestore()
		p.plog.LogStateRestored(p.store.Dir(), filepath.Join(p.store.Dir(), "*.json.bak"))
	}
	return restored, nil
}

// window resolves the inclusive [from, to] date range for a run and how
// many dates it spans. A zero span means nothing is pending.
func (p *UpdatePipeline) window(cfg UpdateConfig) (from, to time.Time, pending int) {
	to = dateOnly(cfg.Date)
	if cfg.Date.IsZero() {
		to = dateOnly(time.Now().AddDate(0, 0, -1))
	}

	switch {
	case !cfg.From.IsZero():
		from = dateOnly(cfg.From)
	case cfg.Force:
		from = to
	default:
		if last, ok := p.store.LastProcessedDate(); ok {
			from = dateOnly(last).AddDate(0, 0, 1)
		} else {
			from = to
		}
	}

	if from.After(to) {
		// Nothing pending; report the resume point for logging.
		return from.AddDate(0, 0, -1), to, 0
	}

	maxDays := cfg.MaxCatchUpDays
	if maxDays <= 0 {
		maxDays = DefaultMaxCatchUpDays
	}
	span := int(to.Sub(from).Hours()/24) + 1
	if span > maxDays {
		to = from.AddDate(0, 0, maxDays-1)
		span = maxDays
		p.logger.WithFields(logrus.Fields{
			"from":      formatDate(from),
			"capped_to": formatDate(to),
			"max_days":  maxDays,
		}).Warn("Backlog exceeds catch-up cap, run will stop early")
	}

	return from, to, span
}

// fetchScoreboard fetches one date's scoreboard with feed metrics and
// logging attached.
func fetchScoreboard(ctx context.Context, src datasource.ScoreboardSource, d time.Time, feedLog *logger.FeedLogger) ([]models.Game, error) {
	start := time.Now()
	games, err := src.FetchGames(ctx, d)
	elapsed := time.Since(start)
	metrics.ObserveFeedRequestDuration("scoreboard", elapsed.Seconds())

	if err != nil {
		metrics.RecordFeedRequest("scoreboard", feedStatus(err))
		feedLog.LogFetchFailed("scoreboard", err.Error())
		return nil, err
	}

	metrics.RecordFeedRequest("scoreboard", "success")
	feedLog.LogFetchCompleted("scoreboard", len(games), float64(elapsed.Milliseconds()))
	return games, nil
}

func (p *UpdatePipeline) refreshStateGauges(ratings *rating.Tracker, lastApplied, target time.Time) {
	metrics.UpdateTeamsRated(float64(ratings.Len()))
	metrics.UpdateLastProcessedTimestamp(float64(lastApplied.Unix()))
	metrics.UpdatePendingDays(float64(daysBetween(lastApplied, target)))
	metrics.UpdateRatingSpread(ratingSpread(ratings))
}

// feedStatus maps a datasource error to a metrics status label.
func feedStatus(err error) string {
	var dsErr datasource.DataSourceError
	if errors.As(err, &dsErr) && dsErr.Code == datasource.ErrCodeRateLimitExceeded {
		return "rate_limited"
	}
	return "error"
}

func ratingSpread(ratings *rating.Tracker) float64 {
	snapshot := ratings.Snapshot()
	if len(snapshot) == 0 {
		return 0
	}
	first := true
	var lo, hi float64
	for _, r := range snapshot {
		if first {
			lo, hi = r, r
			first = false
			continue
		}
		if r < lo {
			lo = r
		}
		if r > hi {
			hi = r
		}
	}
	return hi - lo
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func formatDate(t time.Time) string {
	return t.Format(models.GameDateLayout)
}

func daysBetween(from, to time.Time) int {
	days := int(dateOnly(to).Sub(dateOnly(from)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
