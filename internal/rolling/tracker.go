package rolling

import (
	"math"
	"time"

	"github.com/yourusername/courtside/internal/models"
)

const (
	// WindowSize bounds the per-team game history; the oldest game is
	// evicted when an eleventh arrives.
	WindowSize = 10

	// DefaultRestDays is assumed for a team with no recorded history.
	DefaultRestDays = 7

	// MaxRestDays caps the rest computation across long layoffs.
	MaxRestDays = 14
)

// GameRecord is one game from a single team's perspective.
type GameRecord struct {
	PointsFor     int    `json:"pf"`
	PointsAgainst int    `json:"pa"`
	Won           bool   `json:"won"`
	Date          string `json:"date"`
}

// Margin returns points for minus points against.
func (g GameRecord) Margin() int {
	return g.PointsFor - g.PointsAgainst
}

// Stats holds rolling averages over a team's window.
type Stats struct {
	PointsFor     float64
	PointsAgainst float64
	WinRate       float64
	Margin        float64
	Games         int
}

// Volatility describes the spread of a team's recent margins.
type Volatility struct {
	MarginStd   float64
	MarginRange float64
	Consistency float64
}

// window is a fixed-capacity ring buffer of game records. Records are
// stored oldest first from head.
type window struct {
	buf   [WindowSize]GameRecord
	head  int
	count int
}

func (w *window) push(rec GameRecord) {
	if w.count < WindowSize {
		w.buf[(w.head+w.count)%WindowSize] = rec
		w.count++
		return
	}
	w.buf[w.head] = rec
	w.head = (w.head + 1) % WindowSize
}

func (w *window) at(i int) GameRecord {
	return w.buf[(w.head+i)%WindowSize]
}

func (w *window) newest() GameRecord {
	return w.at(w.count - 1)
}

// Tracker maintains a bounded window of recent games per team id.
//
// Tracker is not safe for concurrent use; callers own synchronization.
type Tracker struct {
	teams map[int]*window
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{teams: make(map[int]*window)}
}

func (t *Tracker) team(teamID int) *window {
	w, ok := t.teams[teamID]
	if !ok {
		w = &window{}
		t.teams[teamID] = w
	}
	return w
}

// Record appends a game to a team's window, evicting the oldest entry
// once the window is full. Dates must arrive in non-decreasing order.
func (t *Tracker) Record(teamID, pointsFor, pointsAgainst int, won bool, gameDate string) {
	t.team(teamID).push(GameRecord{
		PointsFor:     pointsFor,
		PointsAgainst: pointsAgainst,
		Won:           won,
		Date:          gameDate,
	})
}

// Stats returns rolling averages for a team. A team with no history gets
// league-neutral defaults rather than an error.
func (t *Tracker) Stats(teamID int) Stats {
	w, ok := t.teams[teamID]
	if !ok || w.count == 0 {
		return Stats{
			PointsFor:     110.0,
			PointsAgainst: 110.0,
			WinRate:       0.5,
			Margin:        0.0,
			Games:         0,
		}
	}

	var pf, pa, wins int
	for i := 0; i < w.count; i++ {
		rec := w.at(i)
		pf += rec.PointsFor
		pa += rec.PointsAgainst
		if rec.Won {
			wins++
		}
	}

	n := float64(w.count)
	s := Stats{
		PointsFor:     float64(pf) / n,
		PointsAgainst: float64(pa) / n,
		WinRate:       float64(wins) / n,
		Games:         w.count,
	}
	s.Margin = s.PointsFor - s.PointsAgainst
	return s
}

// RestDays returns the days since a team's most recent game, clamped to
// [0, MaxRestDays], and whether the upcoming game is a back-to-back.
// No usable history assumes a fully rested team.
func (t *Tracker) RestDays(teamID int, gameDate string) (int, bool) {
	upcoming, err := time.Parse(models.GameDateLayout, gameDate)
	if err != nil {
		return DefaultRestDays, false
	}

	w, ok := t.teams[teamID]
	if !ok || w.count == 0 {
		return DefaultRestDays, false
	}

	last, err := time.Parse(models.GameDateLayout, w.newest().Date)
	if err != nil {
		return DefaultRestDays, false
	}

	days := int(upcoming.Sub(last).Hours() / 24)
	if days < 0 {
		days = 0
	}
	if days > MaxRestDays {
		days = MaxRestDays
	}

	return days, days == 1
}

// Volatility measures the spread of a team's window margins. Fewer than
// two games yields moderate defaults.
func (t *Tracker) Volatility(teamID int) Volatility {
	w, ok := t.teams[teamID]
	if !ok || w.count < 2 {
		return Volatility{
			MarginStd:   10.0,
			MarginRange: 20.0,
			Consistency: 0.5,
		}
	}

	margins := make([]float64, w.count)
	sum := 0.0
	for i := 0; i < w.count; i++ {
		margins[i] = float64(w.at(i).Margin())
		sum += margins[i]
	}
	mean := sum / float64(w.count)

	var sq float64
	lo, hi := margins[0], margins[0]
	for _, m := range margins {
		d := m - mean
		sq += d * d
		if m < lo {
			lo = m
		}
		if m > hi {
			hi = m
		}
	}
	std := math.Sqrt(sq / float64(w.count-1))

	return Volatility{
		MarginStd:   std,
		MarginRange: hi - lo,
		Consistency: math.Max(0, 1.0-std/20.0),
	}
}

// GameCount returns the number of games in a team's window.
func (t *Tracker) GameCount(teamID int) int {
	if w, ok := t.teams[teamID]; ok {
		return w.count
	}
	return 0
}

// Len returns the number of teams with recorded history.
func (t *Tracker) Len() int {
	return len(t.teams)
}

// Snapshot returns each team's window ordered oldest to newest.
func (t *Tracker) Snapshot() map[int][]GameRecord {
	out := make(map[int][]GameRecord, len(t.teams))
	for id, w := range t.teams {
		games := make([]GameRecord, w.count)
		for i := 0; i < w.count; i++ {
			games[i] = w.at(i)
		}
		out[id] = games
	}
	return out
}

// Restore replaces all history with the given snapshot, keeping at most
// the newest WindowSize games per team.
func (t *Tracker) Restore(snapshot map[int][]GameRecord) {
	t.teams = make(map[int]*window, len(snapshot))
	for id, games := range snapshot {
		if len(games) > WindowSize {
			games = games[len(games)-WindowSize:]
		}
		w := &window{}
		for _, g := range games {
			w.push(g)
		}
		t.teams[id] = w
	}
}
