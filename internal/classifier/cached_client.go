// Package classifier provides the cached classifier client.
package classifier

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// CachedClient wraps Client with prediction caching. Predictions for the
// same matchup, date, and model version are served locally until the TTL
// expires or the date is invalidated.
type CachedClient struct {
	client *Client
	cache  *PredictionCache
	logger *logrus.Logger
}

// NewCachedClient creates a classifier client with a TTL response cache.
func NewCachedClient(cfg Config, logger *logrus.Logger) *CachedClient {
	if logger == nil {
		logger = logrus.New()
	}

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	maxSize := cfg.CacheMaxSize
	if maxSize <= 0 {
		maxSize = 1024
	}

	return &CachedClient{
		client: NewClient(cfg, logger),
		cache:  NewPredictionCache(ttl, maxSize),
		logger: logger,
	}
}

// GameRequest is one matchup to score.
type GameRequest struct {
	HomeTeamID int
	AwayTeamID int
	GameDate   string
	Features   []float64
}

// Predict scores one matchup, serving repeat requests from cache.
func (c *CachedClient) Predict(ctx context.Context, req GameRequest) (*Prediction, error) {
	cacheKey := c.keyFor(req)

	if cached := c.cache.Get(cacheKey); cached != nil {
		c.logger.WithField("cache_key", cacheKey.String()).Debug("Cache hit for prediction")
		PredictionsTotal.WithLabelValues("cache", "true").Inc()
		return cached, nil
	}

	c.logger.WithField("cache_key", cacheKey.String()).Debug("Cache miss, calling classifier")
	result, err := c.client.Predict(ctx, req.Features)
	if err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, result)
	PredictionsTotal.WithLabelValues("service", "false").Inc()
	return result, nil
}

// PredictSlate scores a slate of matchups with partial caching: cached
// games are answered locally and only the remainder goes to the service.
// The result order matches the request order.
func (c *CachedClient) PredictSlate(ctx context.Context, requests []GameRequest) ([]*Prediction, error) {
	results := make([]*Prediction, len(requests))
	uncachedVectors := make([][]float64, 0)
	uncachedIndices := make([]int, 0)

	for i, req := range requests {
		if cached := c.cache.Get(c.keyFor(req)); cached != nil {
			results[i] = cached
			PredictionsTotal.WithLabelValues("cache", "true").Inc()
			continue
		}
		uncachedVectors = append(uncachedVectors, req.Features)
		uncachedIndices = append(uncachedIndices, i)
	}

	if len(uncachedVectors) > 0 {
		c.logger.WithFields(logrus.Fields{
			"total_games": len(requests),
			"cached":      len(requests) - len(uncachedVectors),
			"uncached":    len(uncachedVectors),
		}).Debug("Slate prediction with partial cache")

		fetched, err := c.client.BatchPredict(ctx, uncachedVectors)
		if err != nil {
			return nil, err
		}

		for i, result := range fetched {
			idx := uncachedIndices[i]
			c.cache.Set(c.keyFor(requests[idx]), result)
			results[idx] = result
			PredictionsTotal.WithLabelValues("service", "false").Inc()
		}
	}

	return results, nil
}

// HealthCheck checks classifier service health (not cached).
func (c *CachedClient) HealthCheck(ctx context.Context) error {
	return c.client.HealthCheck(ctx)
}

// FetchModelInfo retrieves serving model metadata (not cached).
func (c *CachedClient) FetchModelInfo(ctx context.Context) (*ModelInfo, error) {
	return c.client.FetchModelInfo(ctx)
}

// InvalidateDate drops cached predictions for one game date.
func (c *CachedClient) InvalidateDate(gameDate string) {
	c.cache.InvalidateDate(gameDate)
	c.logger.WithField("game_date", gameDate).Debug("Invalidated cached predictions for date")
}

// ClearCache clears all cached predictions
func (c *CachedClient) ClearCache() {
	c.cache.Clear()
}

// CacheStats returns cache statistics
func (c *CachedClient) CacheStats() (hits, misses uint64, hitRatio float64) {
	return c.cache.Stats()
}

// Close closes the underlying classifier client.
func (c *CachedClient) Close() error {
	return c.client.Close()
}

func (c *CachedClient) keyFor(req GameRequest) CacheKey {
	return CacheKey{
		HomeTeamID:   req.HomeTeamID,
		AwayTeamID:   req.AwayTeamID,
		GameDate:     req.GameDate,
		ModelVersion: c.client.ModelVersion(),
	}
}
