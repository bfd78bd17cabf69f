package rating

import "math"

// Config holds the Elo tuning parameters.
type Config struct {
	// InitialRating is assigned to any team without a stored rating.
	InitialRating float64

	// KFactor scales how far a single result moves a rating.
	KFactor float64

	// HomeAdvantage is added to the home rating before computing the
	// win expectation.
	HomeAdvantage float64

	// RegressionKeep is the fraction of the old rating retained at a
	// season rollover; the remainder regresses to InitialRating.
	RegressionKeep float64
}

// DefaultConfig returns the standard tuning used in production.
func DefaultConfig() Config {
	return Config{
		InitialRating:  1500.0,
		KFactor:        20.0,
		HomeAdvantage:  70.0,
		RegressionKeep: 0.7,
	}
}

// Tracker maintains an Elo rating per team id.
//
// Tracker is not safe for concurrent use; callers own synchronization.
type Tracker struct {
	cfg     Config
	ratings map[int]float64
}

// NewTracker creates a Tracker with the given tuning.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		cfg:     cfg,
		ratings: make(map[int]float64),
	}
}

// Get returns the rating for a team, or the initial rating when the team
// has never been rated.
func (t *Tracker) Get(teamID int) float64 {
	if r, ok := t.ratings[teamID]; ok {
		return r
	}
	return t.cfg.InitialRating
}

// Set overwrites the rating for a team.
func (t *Tracker) Set(teamID int, rating float64) {
	t.ratings[teamID] = rating
}

// WinProbability computes the home win expectation from two raw ratings,
// applying the configured home advantage.
func (t *Tracker) WinProbability(homeRating, awayRating float64) float64 {
	diff := homeRating - awayRating + t.cfg.HomeAdvantage
	return 1.0 / (1.0 + math.Pow(10, -diff/400.0))
}

// MatchupProbability computes the home win expectation for a matchup using
// the stored ratings.
func (t *Tracker) MatchupProbability(homeID, awayID int) float64 {
	return t.WinProbability(t.Get(homeID), t.Get(awayID))
}

// PreviewDelta returns the rating delta a result would produce without
// applying it.
func (t *Tracker) PreviewDelta(homeID, awayID int, homeWon bool) float64 {
	expected := t.MatchupProbability(homeID, awayID)
	actual := 0.0
	if homeWon {
		actual = 1.0
	}
	return t.cfg.KFactor * (actual - expected)
}

// ApplyResult updates both ratings for a final result. The update is
// zero-sum: the home delta is returned and the away team moves by its
// negation.
func (t *Tracker) ApplyResult(homeID, awayID int, homeWon bool) float64 {
	delta := t.PreviewDelta(homeID, awayID, homeWon)
	t.ratings[homeID] = t.Get(homeID) + delta
	t.ratings[awayID] = t.Get(awayID) - delta
	return delta
}

// ApplyRegression pulls every stored rating toward the initial rating,
// keeping the configured fraction of the old value. Used at season
// rollover.
func (t *Tracker) ApplyRegression() {
	keep := t.cfg.RegressionKeep
	for id, r := range t.ratings {
		t.ratings[id] = keep*r + (1.0-keep)*t.cfg.InitialRating
	}
}

// Len returns the number of teams with a stored rating.
func (t *Tracker) Len() int {
	return len(t.ratings)
}

// Snapshot returns a copy of all stored ratings keyed by team id.
func (t *Tracker) Snapshot() map[int]float64 {
	out := make(map[int]float64, len(t.ratings))
	for id, r := range t.ratings {
		out[id] = r
	}
	return out
}

// Restore replaces all stored ratings with the given snapshot.
func (t *Tracker) Restore(snapshot map[int]float64) {
	t.ratings = make(map[int]float64, len(snapshot))
	for id, r := range snapshot {
		t.ratings[id] = r
	}
}
