// Package engine provides the slate prediction pipeline.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/availability"
	"github.com/yourusername/courtside/internal/classifier"
	"github.com/yourusername/courtside/internal/confidence"
	"github.com/yourusername/courtside/internal/datasource"
	"github.com/yourusername/courtside/internal/features"
	"github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/rating"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/state"
)

// Confidence tiers keyed off the home win probability.
const (
	TierHeavyFavorite    = "Heavy Favorite"
	TierModerateFavorite = "Moderate Favorite"
	TierLeanFavorite     = "Lean Favorite"
	TierTossUp           = "Toss-Up"
	TierLeanUnderdog     = "Lean Underdog"
	TierStrongUnderdog   = "Strong Underdog"
)

// TierFor maps a home win probability to its confidence tier.
func TierFor(probHome float64) string {
	switch {
	case probHome >= 0.75:
		return TierHeavyFavorite
	case probHome >= 0.65:
		return TierModerateFavorite
	case probHome >= 0.55:
		return TierLeanFavorite
	case probHome >= 0.45:
		return TierTossUp
	case probHome >= 0.35:
		return TierLeanUnderdog
	default:
		return TierStrongUnderdog
	}
}

// PredictConfig configures a slate prediction run.
type PredictConfig struct {
	// Date is the slate date. Zero means today.
	Date time.Time

	// AllGames includes every game that has not gone final, not just
	// scheduled ones.
	AllGames bool
}

// SlateReport summarizes a slate prediction run.
type SlateReport struct {
	RunID        uuid.UUID            `json:"run_id"`
	GameDate     string               `json:"game_date"`
	Predictions  []*models.Prediction `json:"predictions"`
	GamesFound   int                  `json:"games_found"`
	Unmapped     int                  `json:"unmapped"`
	CacheHits    int                  `json:"cache_hits"`
	ModelVersion string               `json:"model_version,omitempty"`
	Duration     time.Duration        `json:"duration"`
	CompletedAt  time.Time            `json:"completed_at"`
}

// SlatePredictor scores a date's slate end to end: load state, refresh
// availability, fetch games and market lines, assemble features, call the
// classifier, attach confidence and context.
type SlatePredictor struct {
	store             *state.Store
	scores            datasource.ScoreboardSource
	odds              datasource.OddsSource
	avail             *availability.Service
	client            *classifier.CachedClient
	ratingCfg         rating.Config
	archive           *repository.Repositories
	requireFreshAvail bool
	logger            *logrus.Logger
	plog              *logger.PredictionLogger
	feedLog           *logger.FeedLogger
}

// NewSlatePredictor creates a slate predictor. odds and avail may be nil,
// disabling market context and availability data respectively.
func NewSlatePredictor(
	store *state.Store,
	scores datasource.ScoreboardSource,
	odds datasource.OddsSource,
	avail *availability.Service,
	client *classifier.CachedClient,
	ratingCfg rating.Config,
	baseLogger *logrus.Logger,
) *SlatePredictor {
	if baseLogger == nil {
		baseLogger = logrus.StandardLogger()
	}
	return &SlatePredictor{
		store:     store,
		scores:    scores,
		odds:      odds,
		avail:     avail,
		client:    client,
		ratingCfg: ratingCfg,
		logger:    baseLogger,
		plog:      logger.NewPredictionLogger(baseLogger),
		feedLog:   logger.NewFeedLogger(baseLogger),
	}
}

// SetArchive attaches the optional Postgres archive. Emitted predictions
// are appended there per run; archive failures never fail the slate.
func (p *SlatePredictor) SetArchive(repos *repository.Repositories) {
	p.archive = repos
}

// SetRequireFreshAvailability makes a failed injury refresh fail the
// slate instead of degrading to cached or empty data.
func (p *SlatePredictor) SetRequireFreshAvailability(require bool) {
	p.requireFreshAvail = require
}

// Predict scores the slate for one date.
func (p *SlatePredictor) Predict(ctx context.Context, cfg PredictConfig) (*SlateReport, error) {
	start := time.Now()

	slateDate := dateOnly(cfg.Date)
	if cfg.Date.IsZero() {
		slateDate = dateOnly(time.Now())
	}
	dateStr := formatDate(slateDate)

	report := &SlateReport{RunID: uuid.New(), GameDate: dateStr}

	ratings, form, err := p.store.Load(p.ratingCfg)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	// A failed refresh is survivable; reads degrade through the cache.
	if p.avail != nil {
		if _, err := p.RefreshAvailability(ctx); err != nil {
			if p.requireFreshAvail {
				return nil, fmt.Errorf("refresh availability: %w", err)
			}
			p.logger.WithError(err).Warn("Continuing slate without fresh availability data")
		}
	}

	games, err := fetchScoreboard(ctx, p.scores, slateDate, p.feedLog)
	if err != nil {
		return nil, fmt.Errorf("fetch slate for %s: %w", dateStr, err)
	}

	slate := filterSlate(games, cfg.AllGames)
	report.GamesFound = len(slate)
	if len(slate) == 0 {
		report.Duration = time.Since(start)
		report.CompletedAt = time.Now()
		p.logger.WithField("game_date", dateStr).Info("No games to predict")
		return report, nil
	}

	quotes := p.fetchQuotes(ctx)

	var availSource features.AvailabilitySource
	if p.avail != nil {
		availSource = p.avail
	}
	assembler := features.NewAssembler(ratings, form, availSource)
	scorer := confidence.NewScorer(form)

	// Build aligned request/vector/game slices, dropping unmapped games.
	scored := make([]*models.Game, 0, len(slate))
	vectors := make([]features.Vector, 0, len(slate))
	requests := make([]classifier.GameRequest, 0, len(slate))
	for _, g := range slate {
		if !g.HasTeamIDs() {
			report.Unmapped++
			p.plog.LogPredictionError(g.GameID, fmt.Sprintf("could not map %s at %s to team ids", g.AwayTeam, g.HomeTeam))
			continue
		}

		var homeLine, awayLine *float64
		if q, ok := quotes[datasource.Matchup{HomeID: g.HomeTeamID, AwayID: g.AwayTeamID}]; ok {
			homeLine, awayLine = q.HomeLine, q.AwayLine
		}

		vec := assembler.Build(g.HomeTeamID, g.AwayTeamID, dateStr, homeLine, awayLine)
		scored = append(scored, g)
		vectors = append(vectors, vec)
		requests = append(requests, classifier.GameRequest{
			HomeTeamID: g.HomeTeamID,
			AwayTeamID: g.AwayTeamID,
			GameDate:   dateStr,
			Features:   vec.Slice(),
		})
	}

	if len(requests) == 0 {
		report.Duration = time.Since(start)
		report.CompletedAt = time.Now()
		return report, nil
	}

	hitsBefore, _, _ := p.client.CacheStats()
	preds, err := p.client.PredictSlate(ctx, requests)
	if err != nil {
		return report, fmt.Errorf("score slate: %w", err)
	}
	hitsAfter, _, _ := p.client.CacheStats()
	report.CacheHits = int(hitsAfter - hitsBefore)

	for i, pred := range preds {
		g := scored[i]
		vec := vectors[i]
		report.Predictions = append(report.Predictions, p.buildPrediction(g, &vec, pred, scorer, quotes))
	}

	if len(preds) > 0 && preds[0].ModelVersion != "" {
		report.ModelVersion = preds[0].ModelVersion
		metrics.UpdateModelVersion(report.ModelVersion)
	}

	p.archivePredictions(ctx, dateStr, report.Predictions)

	report.Duration = time.Since(start)
	report.CompletedAt = time.Now()
	metrics.RecordSlateScoringDuration(report.Duration.Seconds())
	p.plog.LogSlateScored(dateStr, len(report.Predictions), report.CacheHits, report.Duration.Seconds())

	return report, nil
}

// archivePredictions appends the run's predictions to the Postgres
// archive. Runs accumulate, so a slate re-scored with fresh lines keeps
// its earlier emissions.
func (p *SlatePredictor) archivePredictions(ctx context.Context, gameDate string, predictions []*models.Prediction) {
	if p.archive == nil || len(predictions) == 0 {
		return
	}

	if err := p.archive.Predictions.InsertBatch(ctx, predictions); err != nil {
		metrics.RecordArchiveWrite("predictions", "error")
		p.logger.WithError(err).WithField("game_date", gameDate).Warn("Failed to archive predictions, continuing")
		return
	}

	metrics.RecordArchiveWrite("predictions", "success")
	p.logger.WithFields(logrus.Fields{
		"game_date":   gameDate,
		"predictions": len(predictions),
	}).Debug("Archived slate predictions")
}

// RefreshAvailability refreshes the injury report with feed metrics and
// logging attached. Safe to call from the scheduler.
func (p *SlatePredictor) RefreshAvailability(ctx context.Context) (int, error) {
	if p.avail == nil {
		return 0, nil
	}

	start := time.Now()
	teams, err := p.avail.Refresh(ctx)
	elapsed := time.Since(start)
	metrics.ObserveFeedRequestDuration("injuries", elapsed.Seconds())

	if err != nil {
		metrics.RecordFeedRequest("injuries", feedStatus(err))
		p.feedLog.LogFetchFailed("injuries", err.Error())
		return 0, err
	}

	metrics.RecordFeedRequest("injuries", "success")
	p.feedLog.LogFetchCompleted("injuries", teams, float64(elapsed.Milliseconds()))
	return teams, nil
}

// fetchQuotes pulls current moneylines, degrading to an empty map when
// the feed is disabled or failing.
func (p *SlatePredictor) fetchQuotes(ctx context.Context) map[datasource.Matchup]models.MoneylineQuote {
	if p.odds == nil || !p.odds.IsEnabled() {
		return nil
	}

	start := time.Now()
	quotes, err := p.odds.FetchMoneylines(ctx)
	elapsed := time.Since(start)
	metrics.ObserveFeedRequestDuration("odds", elapsed.Seconds())

	if err != nil {
		metrics.RecordFeedRequest("odds", feedStatus(err))
		p.feedLog.LogFetchFailed("odds", err.Error())
		p.feedLog.LogDegraded("odds", "neutral_market")
		return nil
	}

	metrics.RecordFeedRequest("odds", "success")
	p.feedLog.LogFetchCompleted("odds", len(quotes), float64(elapsed.Milliseconds()))

	if ur, ok := p.odds.(datasource.UsageReporter); ok {
		if remaining, used, known := ur.Usage(); known {
			metrics.UpdateOddsQuota(float64(remaining), float64(used))
			p.feedLog.LogQuota("odds", remaining, used)
		}
	}

	return quotes
}

func (p *SlatePredictor) buildPrediction(
	g *models.Game,
	vec *features.Vector,
	pred *classifier.Prediction,
	scorer *confidence.Scorer,
	quotes map[datasource.Matchup]models.MoneylineQuote,
) *models.Prediction {
	probHome := round4(pred.HomeWinProbability)
	probAway := round4(1.0 - pred.HomeWinProbability)
	tier := TierFor(probHome)

	winner := g.AwayTeam
	if probHome >= 0.5 {
		winner = g.HomeTeam
	}

	conf := scorer.Score(probHome, vec, g.HomeTeamID, g.AwayTeamID)
	factorsJSON, _ := json.Marshal(conf.Factors)

	out := &models.Prediction{
		ID:                uuid.New(),
		GameDate:          g.GameDate,
		HomeTeam:          g.HomeTeam,
		AwayTeam:          g.AwayTeam,
		ProbHome:          probHome,
		ProbAway:          probAway,
		PredictedWinner:   winner,
		Tier:              tier,
		ConfidenceScore:   conf.Total,
		Qualifier:         conf.Qualifier,
		ConfidenceFactors: factorsJSON,
		MarketProbHome:    vec.MarketProbHome,
		MarketProbAway:    vec.MarketProbAway,
		EloHome:           vec.EloHome,
		EloAway:           vec.EloAway,
		PredictedAt:       time.Now(),
	}

	if q, ok := quotes[datasource.Matchup{HomeID: g.HomeTeamID, AwayID: g.AwayTeamID}]; ok {
		out.HomeLine = q.HomeLine
		out.AwayLine = q.AwayLine
		out.HomeDecimalOdds = models.DecimalOddsValue(q.HomeLine)
		out.AwayDecimalOdds = models.DecimalOddsValue(q.AwayLine)
		out.Bookmaker = q.Bookmaker
	}

	if p.avail != nil {
		out.HomeInjuryNote = p.avail.Note(g.HomeTeamID)
		out.AwayInjuryNote = p.avail.Note(g.AwayTeamID)
	}

	metrics.RecordPredictionGenerated()
	metrics.RecordPredictionTier(tier, float64(conf.Total))
	p.plog.LogPrediction(g.GameID, g.HomeTeam, g.AwayTeam, probHome, tier, float64(conf.Total))

	agreement := marketAgreement(probHome, vec.MarketProbHome)
	metrics.RecordMarketComparison(agreement)
	if agreement != "no_market" {
		p.plog.LogMarketComparison(g.GameID, probHome, vec.MarketProbHome, round4(probHome-vec.MarketProbHome), agreement)
	}

	if conf.Qualifier == confidence.QualifierVolatile {
		notes := make([]string, 0, 2)
		if out.HomeInjuryNote != "" {
			notes = append(notes, g.HomeTeam+": "+out.HomeInjuryNote)
		}
		if out.AwayInjuryNote != "" {
			notes = append(notes, g.AwayTeam+": "+out.AwayInjuryNote)
		}
		p.plog.LogLowConfidence(g.GameID, float64(conf.Total), notes)
	}

	return out
}

// filterSlate keeps scheduled games, or every non-final game when
// allGames is set.
func filterSlate(games []models.Game, allGames bool) []*models.Game {
	slate := make([]*models.Game, 0, len(games))
	for i := range games {
		g := &games[i]
		if g.IsFinal() {
			continue
		}
		if !allGames && !g.IsScheduled() {
			continue
		}
		slate = append(slate, g)
	}
	return slate
}

// marketAgreement labels whether the model and the market favor the same
// side. A market probability of ~0.5 carries no signal.
func marketAgreement(probHome, marketHome float64) string {
	if math.Abs(marketHome-0.5) < 0.01 {
		return "no_market"
	}
	if (probHome > 0.5) == (marketHome > 0.5) {
		return "with_market"
	}
	return "against_market"
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
