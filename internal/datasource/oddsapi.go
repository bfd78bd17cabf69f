package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yourusername/courtside/internal/models"
)

// minRequestInterval spaces calls to The Odds API. The free tier allows
// 500 requests a month, so every call counts.
const minRequestInterval = 10 * time.Second

// preferredBookmakers in priority order. The first one quoting both
// sides of the moneyline wins.
var preferredBookmakers = []string{
	"fanduel",
	"draftkings",
	"betmgm",
	"caesars",
	"pointsbetus",
}

// OddsAPIClient implements OddsSource against The Odds API v4
type OddsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	mapper     *TeamMapper
	logger     *log.Logger
	interval   *rate.Limiter
	now        func() time.Time

	mu                sync.Mutex
	cache             map[string]map[Matchup]models.MoneylineQuote
	requestsRemaining int
	requestsUsed      int
	usageKnown        bool
}

// oddsEvent is one upcoming game in The Odds API response
type oddsEvent struct {
	ID           string          `json:"id"`
	CommenceTime string          `json:"commence_time"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Bookmakers   []oddsBookmaker `json:"bookmakers"`
}

type oddsBookmaker struct {
	Key     string       `json:"key"`
	Title   string       `json:"title"`
	Markets []oddsMarket `json:"markets"`
}

type oddsMarket struct {
	Key      string        `json:"key"`
	Outcomes []oddsOutcome `json:"outcomes"`
}

type oddsOutcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// NewOddsAPIClient creates a new Odds API client. An empty API key
// leaves the source disabled and predictions fall back to neutral
// market probabilities.
func NewOddsAPIClient(httpClient *RateLimitedHTTPClient, apiKey string, mapper *TeamMapper, logger *log.Logger) *OddsAPIClient {
	if mapper == nil {
		mapper = NewTeamMapper()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &OddsAPIClient{
		httpClient: httpClient,
		baseURL:    "https://api.the-odds-api.com/v4/sports/basketball_nba/odds",
		apiKey:     apiKey,
		enabled:    apiKey != "",
		mapper:     mapper,
		logger:     logger,
		interval:   rate.NewLimiter(rate.Every(minRequestInterval), 1),
		now:        time.Now,
		cache:      make(map[string]map[Matchup]models.MoneylineQuote),
	}
}

// FetchMoneylines retrieves current moneyline quotes keyed by matchup.
// Responses are cached per calendar day for the life of the client.
func (c *OddsAPIClient) FetchMoneylines(ctx context.Context) (map[Matchup]models.MoneylineQuote, error) {
	if !c.enabled {
		return nil, NewDataSourceError("the_odds_api", ErrCodeAuthenticationFailed, "no API key configured", nil)
	}

	cacheKey := c.now().Format(models.GameDateLayout)
	c.mu.Lock()
	if cached, ok := c.cache[cacheKey]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	if err := c.interval.Wait(ctx); err != nil {
		return nil, NewDataSourceError("the_odds_api", ErrCodeNetworkError, "request interval wait", err)
	}

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", "us")
	params.Set("markets", "h2h")
	params.Set("oddsFormat", "american")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, NewDataSourceError("the_odds_api", ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError("the_odds_api", ErrCodeNetworkError, "failed to fetch odds", err)
	}
	defer resp.Body.Close()

	c.updateUsage(resp.Header)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, NewDataSourceError("the_odds_api", ErrCodeAuthenticationFailed, "invalid API key", nil)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewDataSourceError("the_odds_api", ErrCodeRateLimitExceeded, "monthly quota or rate limit exceeded", nil)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewDataSourceError("the_odds_api", ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var events []oddsEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, NewDataSourceError("the_odds_api", ErrCodeInvalidData, "failed to parse odds response", err)
	}

	quotes := make(map[Matchup]models.MoneylineQuote)
	for _, event := range events {
		matchup, quote, ok := c.parseEvent(&event)
		if !ok {
			continue
		}
		quotes[matchup] = quote
	}

	c.mu.Lock()
	c.cache[cacheKey] = quotes
	remaining, known := c.requestsRemaining, c.usageKnown
	c.mu.Unlock()

	if known {
		c.logger.Printf("Odds API: %d games fetched, %d requests remaining this month", len(quotes), remaining)
	} else {
		c.logger.Printf("Odds API: %d games fetched", len(quotes))
	}

	return quotes, nil
}

// Name returns the data source name
func (c *OddsAPIClient) Name() string {
	return "the_odds_api"
}

// IsEnabled returns whether this data source is enabled
func (c *OddsAPIClient) IsEnabled() bool {
	return c.enabled
}

// Usage returns (remaining, used) request counts from the most recent
// response headers. ok is false before the first successful call.
func (c *OddsAPIClient) Usage() (remaining, used int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requestsRemaining, c.requestsUsed, c.usageKnown
}

// ClearCache discards cached quotes so the next fetch hits the API
func (c *OddsAPIClient) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]map[Matchup]models.MoneylineQuote)
}

func (c *OddsAPIClient) updateUsage(header http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := header.Get("x-requests-remaining"); v != "" {
		if n, err := parseIntHeader(v); err == nil {
			c.requestsRemaining = n
			c.usageKnown = true
		}
	}
	if v := header.Get("x-requests-used"); v != "" {
		if n, err := parseIntHeader(v); err == nil {
			c.requestsUsed = n
		}
	}
}

// parseEvent converts one API event to a quote. Events missing either
// team or with unmappable names are dropped.
func (c *OddsAPIClient) parseEvent(event *oddsEvent) (Matchup, models.MoneylineQuote, bool) {
	if event.HomeTeam == "" || event.AwayTeam == "" {
		return Matchup{}, models.MoneylineQuote{}, false
	}

	homeID, ok := c.mapper.TeamID(event.HomeTeam)
	if !ok {
		c.logger.Printf("Could not map odds team: %s", event.HomeTeam)
		return Matchup{}, models.MoneylineQuote{}, false
	}
	awayID, ok := c.mapper.TeamID(event.AwayTeam)
	if !ok {
		c.logger.Printf("Could not map odds team: %s", event.AwayTeam)
		return Matchup{}, models.MoneylineQuote{}, false
	}

	quote := models.MoneylineQuote{
		HomeTeam: event.HomeTeam,
		AwayTeam: event.AwayTeam,
	}

	if commence, err := time.Parse(time.RFC3339, event.CommenceTime); err == nil {
		quote.Time = commence
		quote.GameDate = commence.UTC().Format(models.GameDateLayout)
	}

	quote.HomeLine, quote.AwayLine, quote.Bookmaker = extractMoneylines(event)

	return Matchup{HomeID: homeID, AwayID: awayID}, quote, true
}

// extractMoneylines picks one bookmaker's h2h prices for an event,
// preferred books first, then the first book quoting both sides.
func extractMoneylines(event *oddsEvent) (homeLine, awayLine *float64, bookmaker string) {
	type bookQuote struct {
		key  string
		home float64
		away float64
	}

	var quotes []bookQuote
	for _, bm := range event.Bookmakers {
		for _, market := range bm.Markets {
			if market.Key != "h2h" {
				continue
			}
			var home, away *float64
			for i := range market.Outcomes {
				outcome := &market.Outcomes[i]
				switch outcome.Name {
				case event.HomeTeam:
					home = &outcome.Price
				case event.AwayTeam:
					away = &outcome.Price
				}
			}
			if home != nil && away != nil {
				quotes = append(quotes, bookQuote{key: bm.Key, home: *home, away: *away})
			}
		}
	}

	if len(quotes) == 0 {
		return nil, nil, ""
	}

	for _, preferred := range preferredBookmakers {
		for _, q := range quotes {
			if q.key == preferred {
				return &q.home, &q.away, q.key
			}
		}
	}

	first := quotes[0]
	return &first.home, &first.away, first.key
}

func parseIntHeader(v string) (int, error) {
	var n int
	_, err := fmt.Sscanf(v, "%d", &n)
	return n, err
}
