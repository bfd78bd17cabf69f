package models

import "strings"

// PlayerInjury represents a single entry from the league injury report.
type PlayerInjury struct {
	PlayerName string `json:"player_name"`
	TeamName   string `json:"team_name"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
	Position   string `json:"position,omitempty"`
}

// Severity maps the report status to a numeric weight used by the
// availability calculator.
func (p *PlayerInjury) Severity() float64 {
	switch strings.ToLower(strings.TrimSpace(p.Status)) {
	case "out", "o":
		return 1.0
	case "doubtful", "d":
		return 0.75
	case "questionable", "q":
		return 0.5
	case "day-to-day", "day to day", "dtd", "gtd":
		return 0.25
	default:
		return 0.0
	}
}

// IsOut checks if the player is ruled out.
func (p *PlayerInjury) IsOut() bool {
	s := strings.ToLower(strings.TrimSpace(p.Status))
	return s == "out" || s == "o"
}

// IsQuestionable checks if the player is listed as questionable.
func (p *PlayerInjury) IsQuestionable() bool {
	s := strings.ToLower(strings.TrimSpace(p.Status))
	return s == "questionable" || s == "q"
}

// TeamInjuryReport aggregates the injury entries for one team.
type TeamInjuryReport struct {
	TeamName string         `json:"team_name"`
	Players  []PlayerInjury `json:"players"`
}

// PlayersOut counts players ruled out.
func (r *TeamInjuryReport) PlayersOut() int {
	n := 0
	for i := range r.Players {
		if r.Players[i].IsOut() {
			n++
		}
	}
	return n
}

// PlayersQuestionable counts players listed as questionable.
func (r *TeamInjuryReport) PlayersQuestionable() int {
	n := 0
	for i := range r.Players {
		if r.Players[i].IsQuestionable() {
			n++
		}
	}
	return n
}

// TotalSeverity sums the per-player severity weights.
func (r *TeamInjuryReport) TotalSeverity() float64 {
	total := 0.0
	for i := range r.Players {
		total += r.Players[i].Severity()
	}
	return total
}

// HasSignificantAbsences checks whether the report is worth surfacing in
// prediction context: at least one player out, or two or more questionable.
func (r *TeamInjuryReport) HasSignificantAbsences() bool {
	return r.PlayersOut() > 0 || r.PlayersQuestionable() >= 2
}
