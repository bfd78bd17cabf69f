package datasource

import (
	"fmt"
	"strings"

	"github.com/yourusername/courtside/internal/models"
)

// Team is one franchise in the embedded lookup table.
type Team struct {
	ID           int
	FullName     string
	Abbreviation string
	Nickname     string
	City         string
}

// nbaTeams is the static franchise table, ordered by id so lookups
// resolve deterministically.
var nbaTeams = []Team{
	{1610612737, "Atlanta Hawks", "ATL", "Hawks", "Atlanta"},
	{1610612738, "Boston Celtics", "BOS", "Celtics", "Boston"},
	{1610612739, "Cleveland Cavaliers", "CLE", "Cavaliers", "Cleveland"},
	{1610612740, "New Orleans Pelicans", "NOP", "Pelicans", "New Orleans"},
	{1610612741, "Chicago Bulls", "CHI", "Bulls", "Chicago"},
	{1610612742, "Dallas Mavericks", "DAL", "Mavericks", "Dallas"},
	{1610612743, "Denver Nuggets", "DEN", "Nuggets", "Denver"},
	{1610612744, "Golden State Warriors", "GSW", "Warriors", "Golden State"},
	{1610612745, "Houston Rockets", "HOU", "Rockets", "Houston"},
	{1610612746, "Los Angeles Clippers", "LAC", "Clippers", "Los Angeles"},
	{1610612747, "Los Angeles Lakers", "LAL", "Lakers", "Los Angeles"},
	{1610612748, "Miami Heat", "MIA", "Heat", "Miami"},
	{1610612749, "Milwaukee Bucks", "MIL", "Bucks", "Milwaukee"},
	{1610612750, "Minnesota Timberwolves", "MIN", "Timberwolves", "Minnesota"},
	{1610612751, "Brooklyn Nets", "BKN", "Nets", "Brooklyn"},
	{1610612752, "New York Knicks", "NYK", "Knicks", "New York"},
	{1610612753, "Orlando Magic", "ORL", "Magic", "Orlando"},
	{1610612754, "Indiana Pacers", "IND", "Pacers", "Indiana"},
	{1610612755, "Philadelphia 76ers", "PHI", "76ers", "Philadelphia"},
	{1610612756, "Phoenix Suns", "PHX", "Suns", "Phoenix"},
	{1610612757, "Portland Trail Blazers", "POR", "Trail Blazers", "Portland"},
	{1610612758, "Sacramento Kings", "SAC", "Kings", "Sacramento"},
	{1610612759, "San Antonio Spurs", "SAS", "Spurs", "San Antonio"},
	{1610612760, "Oklahoma City Thunder", "OKC", "Thunder", "Oklahoma City"},
	{1610612761, "Toronto Raptors", "TOR", "Raptors", "Toronto"},
	{1610612762, "Utah Jazz", "UTA", "Jazz", "Utah"},
	{1610612763, "Memphis Grizzlies", "MEM", "Grizzlies", "Memphis"},
	{1610612764, "Washington Wizards", "WAS", "Wizards", "Washington"},
	{1610612765, "Detroit Pistons", "DET", "Pistons", "Detroit"},
	{1610612766, "Charlotte Hornets", "CHA", "Hornets", "Charlotte"},
}

// teamAliases maps feed spellings to canonical full names.
var teamAliases = map[string]string{
	"la clippers": "los angeles clippers",
	"la lakers":   "los angeles lakers",
}

// TeamMapper resolves feed team names to canonical ids. Feeds disagree
// on spelling (LA Clippers vs Los Angeles Clippers), so matching runs
// an exact pass over every name field before falling back to substring
// containment.
type TeamMapper struct {
	teams []Team
	byID  map[int]Team
}

// NewTeamMapper creates a mapper over the embedded franchise table
func NewTeamMapper() *TeamMapper {
	byID := make(map[int]Team, len(nbaTeams))
	for _, t := range nbaTeams {
		byID[t.ID] = t
	}
	return &TeamMapper{teams: nbaTeams, byID: byID}
}

// TeamID resolves a team name from any feed to its canonical id
func (m *TeamMapper) TeamID(name string) (int, bool) {
	query := normalizeTeamName(name)
	if query == "" {
		return 0, false
	}

	// Exact match on any name field first
	for _, t := range m.teams {
		if query == strings.ToLower(t.FullName) ||
			query == strings.ToLower(t.Abbreviation) ||
			query == strings.ToLower(t.Nickname) ||
			query == strings.ToLower(t.City) {
			return t.ID, true
		}
	}

	// Substring containment in either direction
	for _, t := range m.teams {
		full := strings.ToLower(t.FullName)
		if strings.Contains(full, query) || strings.Contains(query, full) {
			return t.ID, true
		}
	}

	return 0, false
}

// TeamName returns the canonical full name for a team id
func (m *TeamMapper) TeamName(id int) (string, bool) {
	t, ok := m.byID[id]
	if !ok {
		return "", false
	}
	return t.FullName, true
}

// Abbreviation returns the three-letter code for a team id
func (m *TeamMapper) Abbreviation(id int) (string, bool) {
	t, ok := m.byID[id]
	if !ok {
		return "", false
	}
	return t.Abbreviation, true
}

// Teams returns the full franchise table ordered by id
func (m *TeamMapper) Teams() []Team {
	out := make([]Team, len(m.teams))
	copy(out, m.teams)
	return out
}

// ResolveGame fills in HomeTeamID and AwayTeamID from the game's team
// names. Returns models.ErrTeamNotMapped naming the offending team when
// either side cannot be resolved.
func (m *TeamMapper) ResolveGame(g *models.Game) error {
	homeID, ok := m.TeamID(g.HomeTeam)
	if !ok {
		return fmt.Errorf("%w: %q", models.ErrTeamNotMapped, g.HomeTeam)
	}
	awayID, ok := m.TeamID(g.AwayTeam)
	if !ok {
		return fmt.Errorf("%w: %q", models.ErrTeamNotMapped, g.AwayTeam)
	}
	g.HomeTeamID = homeID
	g.AwayTeamID = awayID
	return nil
}

func normalizeTeamName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := teamAliases[n]; ok {
		return canonical
	}
	return n
}
