package engine

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/rating"
	"github.com/yourusername/courtside/internal/rolling"
)

type resultKey struct {
	date string
	home int
	away int
}

// ResultProcessor folds final game results into the rating and rolling
// trackers, at most once per result per session.
type ResultProcessor struct {
	ratings *rating.Tracker
	form    *rolling.Tracker
	logger  *logrus.Logger

	processed map[resultKey]struct{}
}

// ResultPreview describes what processing a result would change.
type ResultPreview struct {
	WouldProcess bool    `json:"would_process"`
	Reason       string  `json:"reason,omitempty"`
	HomeTeam     string  `json:"home_team,omitempty"`
	AwayTeam     string  `json:"away_team,omitempty"`
	Score        string  `json:"score,omitempty"`
	Winner       string  `json:"winner,omitempty"`
	HomeElo      float64 `json:"current_home_elo,omitempty"`
	AwayElo      float64 `json:"current_away_elo,omitempty"`
	DeltaHome    float64 `json:"elo_change_home,omitempty"`
	DeltaAway    float64 `json:"elo_change_away,omitempty"`
	NewHomeElo   float64 `json:"new_home_elo,omitempty"`
	NewAwayElo   float64 `json:"new_away_elo,omitempty"`
}

// NewResultProcessor creates a ResultProcessor over the given trackers.
func NewResultProcessor(ratings *rating.Tracker, form *rolling.Tracker, logger *logrus.Logger) *ResultProcessor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ResultProcessor{
		ratings:   ratings,
		form:      form,
		logger:    logger,
		processed: make(map[resultKey]struct{}),
	}
}

func gameKey(g *models.Game) resultKey {
	return resultKey{date: g.GameDate, home: g.HomeTeamID, away: g.AwayTeamID}
}

// Process folds one result into both trackers. It returns false without
// mutating anything when the game is not final, a team id is unresolved,
// or the same result was already processed this session and force is not
// set.
func (p *ResultProcessor) Process(g *models.Game, force bool) bool {
	if !g.IsFinal() {
		return false
	}

	if !g.HasTeamIDs() {
		p.logger.WithFields(logrus.Fields{
			"home_team": g.HomeTeam,
			"away_team": g.AwayTeam,
			"game_date": g.GameDate,
		}).Warn("Skipping result with unmapped team")
		return false
	}

	key := gameKey(g)
	if _, dup := p.processed[key]; dup && !force {
		return false
	}

	homeWon := g.HomeWon()
	delta := p.ratings.ApplyResult(g.HomeTeamID, g.AwayTeamID, homeWon)

	p.form.Record(g.HomeTeamID, g.HomeScore, g.AwayScore, homeWon, g.GameDate)
	p.form.Record(g.AwayTeamID, g.AwayScore, g.HomeScore, !homeWon, g.GameDate)

	p.processed[key] = struct{}{}

	p.logger.WithFields(logrus.Fields{
		"matchup":   g.Matchup(),
		"score":     fmt.Sprintf("%d-%d", g.HomeScore, g.AwayScore),
		"game_date": g.GameDate,
		"elo_delta": round1(delta),
	}).Debug("Processed final result")

	return true
}

// ProcessAll folds a batch of results and returns how many were applied.
func (p *ResultProcessor) ProcessAll(games []models.Game, force bool) int {
	count := 0
	for i := range games {
		if p.Process(&games[i], force) {
			count++
		}
	}
	return count
}

// Preview reports the rating movement a result would cause without
// applying it.
func (p *ResultProcessor) Preview(g *models.Game) ResultPreview {
	if !g.IsFinal() {
		return ResultPreview{Reason: "game not final"}
	}
	if !g.HasTeamIDs() {
		return ResultPreview{Reason: "could not map team names to ids"}
	}

	homeElo := p.ratings.Get(g.HomeTeamID)
	awayElo := p.ratings.Get(g.AwayTeamID)
	delta := p.ratings.PreviewDelta(g.HomeTeamID, g.AwayTeamID, g.HomeWon())

	winner := "away"
	if g.HomeWon() {
		winner = "home"
	}

	return ResultPreview{
		WouldProcess: true,
		HomeTeam:     g.HomeTeam,
		AwayTeam:     g.AwayTeam,
		Score:        fmt.Sprintf("%d-%d", g.HomeScore, g.AwayScore),
		Winner:       winner,
		HomeElo:      round1(homeElo),
		AwayElo:      round1(awayElo),
		DeltaHome:    round1(delta),
		DeltaAway:    round1(-delta),
		NewHomeElo:   round1(homeElo + delta),
		NewAwayElo:   round1(awayElo - delta),
	}
}

// ProcessedCount returns the number of distinct results applied this
// session.
func (p *ResultProcessor) ProcessedCount() int {
	return len(p.processed)
}

// ClearProcessed resets the session dedup set.
func (p *ResultProcessor) ClearProcessed() {
	p.processed = make(map[resultKey]struct{})
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
