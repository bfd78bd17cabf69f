package models

import (
	"fmt"
	"strings"
	"time"
)

// GameDateLayout is the calendar-date format used across feeds, state files
// and the archive.
const GameDateLayout = "2006-01-02"

// Game represents a single game from the league scoreboard feed.
//
// Team ids are resolved through the team mapper; a zero id means the feed
// name could not be mapped and the game must not be processed.
type Game struct {
	GameID     string     `db:"game_id" json:"game_id,omitempty"`
	GameDate   string     `db:"game_date" json:"game_date" validate:"required"`
	HomeTeam   string     `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam   string     `db:"away_team" json:"away_team" validate:"required"`
	HomeScore  int        `db:"home_score" json:"home_score" validate:"gte=0"`
	AwayScore  int        `db:"away_score" json:"away_score" validate:"gte=0"`
	Status     string     `db:"status" json:"status" validate:"required"`
	HomeTeamID int        `db:"home_team_id" json:"home_team_id"`
	AwayTeamID int        `db:"away_team_id" json:"away_team_id"`
	GameTime   string     `db:"game_time" json:"game_time,omitempty"`
	Tipoff     *time.Time `db:"tipoff" json:"tipoff,omitempty"`
}

// IsFinal checks if the game has completed.
func (g *Game) IsFinal() bool {
	return strings.EqualFold(g.Status, "Final")
}

// IsScheduled checks if the game is upcoming.
func (g *Game) IsScheduled() bool {
	return strings.EqualFold(g.Status, "Scheduled")
}

// IsInProgress checks if the game is currently being played.
func (g *Game) IsInProgress() bool {
	s := strings.ToLower(g.Status)
	return strings.Contains(s, "progress") || strings.Contains(s, "halftime")
}

// HomeWon checks if the home team won. Only meaningful for final games.
func (g *Game) HomeWon() bool {
	return g.HomeScore > g.AwayScore
}

// HasTeamIDs checks that both feed names resolved to team ids.
func (g *Game) HasTeamIDs() bool {
	return g.HomeTeamID != 0 && g.AwayTeamID != 0
}

// Margin returns the home-minus-away score margin.
func (g *Game) Margin() int {
	return g.HomeScore - g.AwayScore
}

// Matchup returns a display string in "AWAY @ HOME" form.
func (g *Game) Matchup() string {
	return fmt.Sprintf("%s @ %s", g.AwayTeam, g.HomeTeam)
}
