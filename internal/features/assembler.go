package features

import (
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/rating"
	"github.com/yourusername/courtside/internal/rolling"
)

// TeamAvailability is the live availability view of one team.
type TeamAvailability struct {
	// Adjustment is the rating shift applied before computing the win
	// expectation. Zero or negative.
	Adjustment float64

	PlayersOut          int
	PlayersQuestionable int
	Severity            float64
}

// AvailabilitySource supplies per-team availability data during assembly.
// A false return means no data; the assembler zero-fills those fields.
type AvailabilitySource interface {
	Availability(teamID int) (TeamAvailability, bool)
}

// Assembler builds classifier input vectors for matchups.
//
// Assembly always yields a full-width vector: missing market lines fall
// back to the neutral 0.5 and missing availability data zero-fills its
// fields, leaving ratings unshifted.
type Assembler struct {
	ratings *rating.Tracker
	form    *rolling.Tracker
	avail   AvailabilitySource
}

// NewAssembler creates an Assembler. avail may be nil to disable
// availability-shifted ratings and injury fields.
func NewAssembler(ratings *rating.Tracker, form *rolling.Tracker, avail AvailabilitySource) *Assembler {
	return &Assembler{
		ratings: ratings,
		form:    form,
		avail:   avail,
	}
}

// Build assembles the feature vector for a matchup on a given date.
// Moneylines may be nil when no market price is known.
func (a *Assembler) Build(homeID, awayID int, gameDate string, homeLine, awayLine *float64) Vector {
	var v Vector

	homeAvail, homeOK := a.availability(homeID)
	awayAvail, awayOK := a.availability(awayID)

	// Ratings, shifted by any availability adjustment before the win
	// expectation is computed.
	v.EloHome = a.ratings.Get(homeID) + homeAvail.Adjustment
	v.EloAway = a.ratings.Get(awayID) + awayAvail.Adjustment
	v.EloDiff = v.EloHome - v.EloAway
	v.EloProb = a.ratings.WinProbability(v.EloHome, v.EloAway)

	home := a.form.Stats(homeID)
	away := a.form.Stats(awayID)

	v.PFRollHome = home.PointsFor
	v.PFRollAway = away.PointsFor
	v.PFRollDiff = home.PointsFor - away.PointsFor
	v.PARollHome = home.PointsAgainst
	v.PARollAway = away.PointsAgainst
	v.PARollDiff = home.PointsAgainst - away.PointsAgainst
	v.WinRollHome = home.WinRate
	v.WinRollAway = away.WinRate
	v.WinRollDiff = home.WinRate - away.WinRate
	v.MarginRollHome = home.Margin
	v.MarginRollAway = away.Margin
	v.MarginRollDiff = home.Margin - away.Margin
	v.GamesInWindowHome = float64(home.Games)
	v.GamesInWindowAway = float64(away.Games)

	homeRest, homeB2B := a.form.RestDays(homeID, gameDate)
	awayRest, awayB2B := a.form.RestDays(awayID, gameDate)
	v.HomeRestDays = float64(homeRest)
	v.AwayRestDays = float64(awayRest)
	v.HomeB2B = boolFeature(homeB2B)
	v.AwayB2B = boolFeature(awayB2B)
	v.RestDiff = float64(homeRest - awayRest)

	v.MarketProbHome = models.ImpliedProbability(homeLine)
	v.MarketProbAway = models.ImpliedProbability(awayLine)

	if homeOK {
		v.HomePlayersOut = float64(homeAvail.PlayersOut)
		v.HomePlayersQuestionable = float64(homeAvail.PlayersQuestionable)
		v.HomeInjurySeverity = homeAvail.Severity
	}
	if awayOK {
		v.AwayPlayersOut = float64(awayAvail.PlayersOut)
		v.AwayPlayersQuestionable = float64(awayAvail.PlayersQuestionable)
		v.AwayInjurySeverity = awayAvail.Severity
	}

	return v
}

func (a *Assembler) availability(teamID int) (TeamAvailability, bool) {
	if a.avail == nil {
		return TeamAvailability{}, false
	}
	return a.avail.Availability(teamID)
}

func boolFeature(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
