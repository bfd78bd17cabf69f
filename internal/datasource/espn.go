package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/yourusername/courtside/internal/models"
)

// ESPNClient implements ScoreboardSource and InjurySource against
// ESPN's public site API. The feed needs no key, just honest headers.
type ESPNClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	userAgent  string
	mapper     *TeamMapper
	logger     *log.Logger
}

// espnScoreboard is the scoreboard envelope
type espnScoreboard struct {
	Events []espnEvent `json:"events"`
}

type espnEvent struct {
	ID           string            `json:"id"`
	Date         string            `json:"date"`
	Status       espnStatus        `json:"status"`
	Competitions []espnCompetition `json:"competitions"`
}

type espnStatus struct {
	Type espnStatusType `json:"type"`
}

type espnStatusType struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type espnCompetition struct {
	Competitors []espnCompetitor `json:"competitors"`
}

type espnCompetitor struct {
	HomeAway string   `json:"homeAway"`
	Score    string   `json:"score"`
	Team     espnTeam `json:"team"`
}

type espnTeam struct {
	DisplayName string `json:"displayName"`
}

// espnInjuriesResponse is the injuries envelope, one entry per team
type espnInjuriesResponse struct {
	Injuries []espnTeamInjuries `json:"injuries"`
}

type espnTeamInjuries struct {
	DisplayName string       `json:"displayName"`
	Injuries    []espnInjury `json:"injuries"`
}

type espnInjury struct {
	Status       string            `json:"status"`
	ShortComment string            `json:"shortComment"`
	LongComment  string            `json:"longComment"`
	Athlete      espnAthlete       `json:"athlete"`
	Details      espnInjuryDetails `json:"details"`
}

type espnAthlete struct {
	DisplayName string       `json:"displayName"`
	Position    espnPosition `json:"position"`
}

type espnPosition struct {
	Abbreviation string `json:"abbreviation"`
}

type espnInjuryDetails struct {
	Type string `json:"type"`
}

// NewESPNClient creates a new ESPN API client
func NewESPNClient(httpClient *RateLimitedHTTPClient, mapper *TeamMapper, logger *log.Logger) *ESPNClient {
	if mapper == nil {
		mapper = NewTeamMapper()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &ESPNClient{
		httpClient: httpClient,
		baseURL:    "https://site.api.espn.com/apis/site/v2/sports/basketball/nba",
		userAgent:  "NBA-Predictor/1.0",
		mapper:     mapper,
		logger:     logger,
	}
}

// FetchGames retrieves every game on the scoreboard for a date
func (c *ESPNClient) FetchGames(ctx context.Context, date time.Time) ([]models.Game, error) {
	url := fmt.Sprintf("%s/scoreboard?dates=%s", c.baseURL, date.Format("20060102"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewDataSourceError("espn", ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError("espn", ErrCodeNetworkError, "failed to fetch scoreboard", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewDataSourceError("espn", ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewDataSourceError("espn", ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var board espnScoreboard
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return nil, NewDataSourceError("espn", ErrCodeInvalidData, "failed to parse scoreboard", err)
	}

	games := make([]models.Game, 0, len(board.Events))
	for _, event := range board.Events {
		game, ok := c.parseEvent(&event)
		if !ok {
			c.logger.Printf("Skipping malformed event %s", event.ID)
			continue
		}
		games = append(games, game)
	}

	return games, nil
}

// FetchCompletedGames retrieves only games with a final score for a date
func (c *ESPNClient) FetchCompletedGames(ctx context.Context, date time.Time) ([]models.Game, error) {
	games, err := c.FetchGames(ctx, date)
	if err != nil {
		return nil, err
	}
	completed := games[:0]
	for _, g := range games {
		if g.IsFinal() {
			completed = append(completed, g)
		}
	}
	return completed, nil
}

// FetchScheduledGames retrieves only games that have not started for a date
func (c *ESPNClient) FetchScheduledGames(ctx context.Context, date time.Time) ([]models.Game, error) {
	games, err := c.FetchGames(ctx, date)
	if err != nil {
		return nil, err
	}
	scheduled := games[:0]
	for _, g := range games {
		if g.IsScheduled() {
			scheduled = append(scheduled, g)
		}
	}
	return scheduled, nil
}

// FetchInjuries retrieves the league-wide injury report keyed by team id.
// Teams whose feed name cannot be mapped are skipped.
func (c *ESPNClient) FetchInjuries(ctx context.Context) (map[int]*models.TeamInjuryReport, error) {
	url := c.baseURL + "/injuries"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewDataSourceError("espn", ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError("espn", ErrCodeNetworkError, "failed to fetch injuries", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewDataSourceError("espn", ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewDataSourceError("espn", ErrCodeServerError, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var payload espnInjuriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewDataSourceError("espn", ErrCodeInvalidData, "failed to parse injuries", err)
	}

	reports := make(map[int]*models.TeamInjuryReport)
	for _, teamData := range payload.Injuries {
		teamID, ok := c.mapper.TeamID(teamData.DisplayName)
		if !ok {
			c.logger.Printf("Could not map injury report team: %s", teamData.DisplayName)
			continue
		}

		report := &models.TeamInjuryReport{TeamName: teamData.DisplayName}
		for _, injury := range teamData.Injuries {
			detail := injury.LongComment
			if detail == "" {
				detail = injury.ShortComment
			}
			report.Players = append(report.Players, models.PlayerInjury{
				PlayerName: injury.Athlete.DisplayName,
				TeamName:   teamData.DisplayName,
				Status:     injury.Status,
				Detail:     detail,
				Position:   injury.Athlete.Position.Abbreviation,
			})
		}
		reports[teamID] = report
	}

	return reports, nil
}

// Name returns the data source name
func (c *ESPNClient) Name() string {
	return "espn"
}

// IsEnabled returns whether this data source is enabled
func (c *ESPNClient) IsEnabled() bool {
	return true
}

// parseEvent converts one scoreboard event to a Game. Events without a
// competition or both competitors are reported as malformed.
func (c *ESPNClient) parseEvent(event *espnEvent) (models.Game, bool) {
	if len(event.Competitions) == 0 {
		return models.Game{}, false
	}
	competitors := event.Competitions[0].Competitors
	if len(competitors) < 2 {
		return models.Game{}, false
	}

	game := models.Game{GameID: event.ID, Status: event.Status.Type.Description}
	if game.Status == "" {
		game.Status = "Unknown"
	}

	// Event dates arrive as RFC3339, sometimes without seconds
	if tipoff, err := parseESPNTime(event.Date); err == nil {
		game.Tipoff = &tipoff
		game.GameDate = tipoff.UTC().Format(models.GameDateLayout)
		game.GameTime = tipoff.Local().Format("15:04")
	} else if len(event.Date) >= 10 {
		game.GameDate = event.Date[:10]
	}

	for _, competitor := range competitors {
		score := 0
		if competitor.Score != "" {
			if n, err := strconv.Atoi(competitor.Score); err == nil {
				score = n
			}
		}

		if competitor.HomeAway == "home" {
			game.HomeTeam = competitor.Team.DisplayName
			game.HomeScore = score
		} else {
			game.AwayTeam = competitor.Team.DisplayName
			game.AwayScore = score
		}
	}

	if game.HomeTeam == "" || game.AwayTeam == "" {
		return models.Game{}, false
	}

	// Unmapped teams leave the id zero for the caller to decide on
	if id, ok := c.mapper.TeamID(game.HomeTeam); ok {
		game.HomeTeamID = id
	}
	if id, ok := c.mapper.TeamID(game.AwayTeam); ok {
		game.AwayTeamID = id
	}

	return game, true
}

func parseESPNTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04Z07:00", value)
}
