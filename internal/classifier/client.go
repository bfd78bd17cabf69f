// Package classifier provides the HTTP client for the win probability service.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/features"
)

// Config holds classifier client settings.
type Config struct {
	URL             string
	TimeoutSeconds  int
	ModelVersion    string
	CacheTTLSeconds int
	CacheMaxSize    int
}

// Client calls the win probability service over HTTP JSON.
type Client struct {
	client       *http.Client
	baseURL      string
	modelVersion string
	logger       *logrus.Logger
}

// NewClient creates an HTTP client for the win probability service.
func NewClient(cfg Config, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		client:       &http.Client{Timeout: timeout},
		baseURL:      strings.TrimRight(cfg.URL, "/"),
		modelVersion: cfg.ModelVersion,
		logger:       logger,
	}
}

// Prediction is a scored matchup returned by the service.
type Prediction struct {
	HomeWinProbability float64
	AwayWinProbability float64
	ModelVersion       string
	PredictedAt        time.Time
}

// predictRequest represents the /predict payload. Feature names ride along
// so the service can reject a column-order mismatch instead of mis-scoring.
type predictRequest struct {
	Features     []float64 `json:"features"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	ModelVersion string    `json:"model_version,omitempty"`
}

// predictResponse represents the /predict response body
type predictResponse struct {
	HomeWinProbability float64 `json:"home_win_probability"`
	ModelVersion       string  `json:"model_version"`
}

// batchPredictRequest represents the /predict/batch payload
type batchPredictRequest struct {
	Instances    [][]float64 `json:"instances"`
	FeatureNames []string    `json:"feature_names,omitempty"`
	ModelVersion string      `json:"model_version,omitempty"`
}

// batchPredictResponse represents the /predict/batch response body
type batchPredictResponse struct {
	Predictions  []predictResponse `json:"predictions"`
	ModelVersion string            `json:"model_version"`
}

// Predict scores one feature vector and returns the home win probability.
func (c *Client) Predict(ctx context.Context, featureVec []float64) (*Prediction, error) {
	if len(featureVec) != features.NumFeatures {
		return nil, fmt.Errorf("%w: expected %d features, got %d", ErrInvalidRequest, features.NumFeatures, len(featureVec))
	}

	start := time.Now()

	reqBody := predictRequest{
		Features:     featureVec,
		FeatureNames: features.Columns(),
		ModelVersion: c.modelVersion,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/predict", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		RequestErrorsTotal.WithLabelValues("predict", "network").Inc()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		RequestErrorsTotal.WithLabelValues("predict", "http_error").Inc()
		return nil, fmt.Errorf("predict request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var predResp predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&predResp); err != nil {
		RequestErrorsTotal.WithLabelValues("predict", "decode").Inc()
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	result, err := c.toPrediction(predResp)
	if err != nil {
		RequestErrorsTotal.WithLabelValues("predict", "invalid").Inc()
		return nil, err
	}

	RequestLatency.WithLabelValues("predict").Observe(time.Since(start).Seconds())

	c.logger.WithFields(logrus.Fields{
		"prob_home":     result.HomeWinProbability,
		"model_version": result.ModelVersion,
		"duration":      time.Since(start),
	}).Debug("Prediction received")

	return result, nil
}

// BatchPredict scores a slate of feature vectors in one round trip. The
// response order matches the request order.
func (c *Client) BatchPredict(ctx context.Context, vectors [][]float64) ([]*Prediction, error) {
	if len(vectors) == 0 {
		return []*Prediction{}, nil
	}
	for i, v := range vectors {
		if len(v) != features.NumFeatures {
			return nil, fmt.Errorf("%w: instance %d has %d features, expected %d", ErrInvalidRequest, i, len(v), features.NumFeatures)
		}
	}

	start := time.Now()

	reqBody := batchPredictRequest{
		Instances:    vectors,
		FeatureNames: features.Columns(),
		ModelVersion: c.modelVersion,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/predict/batch", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		RequestErrorsTotal.WithLabelValues("predict_batch", "network").Inc()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		RequestErrorsTotal.WithLabelValues("predict_batch", "http_error").Inc()
		return nil, fmt.Errorf("batch predict request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var batchResp batchPredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&batchResp); err != nil {
		RequestErrorsTotal.WithLabelValues("predict_batch", "decode").Inc()
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(batchResp.Predictions) != len(vectors) {
		RequestErrorsTotal.WithLabelValues("predict_batch", "invalid").Inc()
		return nil, fmt.Errorf("%w: sent %d instances, received %d predictions", ErrInvalidPrediction, len(vectors), len(batchResp.Predictions))
	}

	results := make([]*Prediction, len(batchResp.Predictions))
	for i, pr := range batchResp.Predictions {
		if pr.ModelVersion == "" {
			pr.ModelVersion = batchResp.ModelVersion
		}
		result, err := c.toPrediction(pr)
		if err != nil {
			RequestErrorsTotal.WithLabelValues("predict_batch", "invalid").Inc()
			return nil, fmt.Errorf("instance %d: %w", i, err)
		}
		results[i] = result
	}

	RequestLatency.WithLabelValues("predict_batch").Observe(time.Since(start).Seconds())

	c.logger.WithFields(logrus.Fields{
		"games":    len(results),
		"duration": time.Since(start),
	}).Debug("Batch prediction received")

	return results, nil
}

// ModelInfo describes the model currently behind /predict.
type ModelInfo struct {
	ModelVersion string    `json:"model_version"`
	TrainedAt    time.Time `json:"trained_at"`
	FeatureCount int       `json:"feature_count"`
	Accuracy     float64   `json:"accuracy"`
}

// FetchModelInfo retrieves metadata for the serving model.
func (c *Client) FetchModelInfo(ctx context.Context) (*ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/model", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model info request failed with status %d", resp.StatusCode)
	}

	var info ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode model info: %w", err)
	}

	return &info, nil
}

// HealthCheck checks classifier service health.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	return nil
}

// ModelVersion returns the version pinned in the client config. Responses
// may carry a different version when the service has rolled forward.
func (c *Client) ModelVersion() string {
	return c.modelVersion
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *Client) toPrediction(pr predictResponse) (*Prediction, error) {
	if pr.HomeWinProbability < 0 || pr.HomeWinProbability > 1 {
		return nil, fmt.Errorf("%w: probability %.4f out of range", ErrInvalidPrediction, pr.HomeWinProbability)
	}

	modelVersion := pr.ModelVersion
	if modelVersion == "" {
		modelVersion = c.modelVersion
	}

	return &Prediction{
		HomeWinProbability: pr.HomeWinProbability,
		AwayWinProbability: 1 - pr.HomeWinProbability,
		ModelVersion:       modelVersion,
		PredictedAt:        time.Now(),
	}, nil
}
