package availability

import "strings"

// PlayerTier classifies how much a player's absence should move a team's
// rating.
type PlayerTier int

const (
	TierBench PlayerTier = iota
	TierStarter
	TierAllStar
)

// Multiplier returns the impact multiplier for a tier.
func (t PlayerTier) Multiplier() float64 {
	switch t {
	case TierAllStar:
		return 2.5
	case TierStarter:
		return 1.5
	default:
		return 1.0
	}
}

// String returns the tier name.
func (t PlayerTier) String() string {
	switch t {
	case TierAllStar:
		return "all_star"
	case TierStarter:
		return "starter"
	default:
		return "bench"
	}
}

// Top-tier players for the current season. Refreshed each season from
// All-Star and All-NBA selections.
var allStarNames = []string{
	// Eastern Conference
	"Giannis Antetokounmpo",
	"Joel Embiid",
	"Jayson Tatum",
	"Jaylen Brown",
	"Damian Lillard",
	"Donovan Mitchell",
	"Darius Garland",
	"Trae Young",
	"Jimmy Butler",
	"Bam Adebayo",
	"Tyrese Haliburton",
	"Paolo Banchero",
	"Franz Wagner",
	"Jalen Brunson",
	"Julius Randle",
	"Scottie Barnes",
	"DeMar DeRozan",
	"LaMelo Ball",
	"Cade Cunningham",

	// Western Conference
	"Nikola Jokic",
	"Luka Doncic",
	"Shai Gilgeous-Alexander",
	"Kevin Durant",
	"Devin Booker",
	"Stephen Curry",
	"LeBron James",
	"Anthony Davis",
	"Kawhi Leonard",
	"Paul George",
	"Anthony Edwards",
	"Karl-Anthony Towns",
	"Ja Morant",
	"Zion Williamson",
	"Brandon Ingram",
	"Domantas Sabonis",
	"De'Aaron Fox",
	"Victor Wembanyama",
	"Alperen Sengun",
	"Lauri Markkanen",

	// Rising stars and consistent selections
	"Tyrese Maxey",
	"Desmond Bane",
	"Jaren Jackson Jr.",
	"Evan Mobley",
	"Jalen Williams",
	"Mikal Bridges",
	"OG Anunoby",
	"Kristaps Porzingis",
}

var allStars = make(map[string]struct{}, len(allStarNames))

func init() {
	for _, name := range allStarNames {
		allStars[NormalizeName(name)] = struct{}{}
	}
}

// NormalizeName lowercases a player name and strips punctuation so report
// spellings match the tier list.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, ".", "")
	return strings.Join(strings.Fields(s), " ")
}

// TierFor classifies a player by name. Unknown players default to the
// starter tier so impact is overestimated rather than missed.
func TierFor(name string) PlayerTier {
	if _, ok := allStars[NormalizeName(name)]; ok {
		return TierAllStar
	}
	return TierStarter
}
