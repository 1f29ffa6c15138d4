// Package weather provides the client for the optional venue-conditions feed.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fantasy-edge/internal/config"
	"github.com/yourusername/fantasy-edge/internal/metrics"
	"github.com/yourusername/fantasy-edge/internal/models"
	"github.com/yourusername/fantasy-edge/internal/oddsfeed"
)

// Client fetches venue conditions for outdoor matchups. A disabled or failing
// feed is not an error path for predictions; callers fall back to neutral
// conditions.
type Client struct {
	httpClient *oddsfeed.RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Entry
}

// forecastResponse is the provider payload for a point forecast
type forecastResponse struct {
	Temperature float64 `json:"temperature_f"`
	WindSpeed   float64 `json:"wind_mph"`
	Humidity    float64 `json:"humidity_pct"`
	Condition   string  `json:"condition"`
}

// NewClient creates a weather feed client from configuration
func NewClient(cfg config.WeatherConfig, logger *logrus.Entry) *Client {
	httpCfg := oddsfeed.DefaultHTTPClientConfig()
	if cfg.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return &Client{
		httpClient: oddsfeed.NewRateLimitedHTTPClient(httpCfg, logger),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		enabled:    cfg.Enabled,
		logger:     logger,
	}
}

// Enabled reports whether the feed is configured for use
func (c *Client) Enabled() bool {
	return c.enabled
}

// Forecast retrieves conditions at the home venue around the game's start
// time. Returns nil without error when the feed is disabled or the venue
// location is unknown.
func (c *Client) Forecast(ctx context.Context, game *models.Game, homeTeam *models.Team) (*models.WeatherReport, error) {
	if !c.enabled {
		return nil, nil
	}
	if homeTeam == nil || (homeTeam.Latitude == 0 && homeTeam.Longitude == 0) {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/v1/forecast?lat=%.4f&lon=%.4f&at=%s",
		c.baseURL, homeTeam.Latitude, homeTeam.Longitude,
		game.StartTime.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create forecast request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		metrics.FeedRequestsTotal.WithLabelValues("weather", "error").Inc()
		return nil, fmt.Errorf("%w: %v", models.ErrFeedUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		metrics.FeedRequestsTotal.WithLabelValues("weather", "error").Inc()
		return nil, fmt.Errorf("%w: unexpected status %d", models.ErrFeedUnavailable, resp.StatusCode)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.FeedRequestsTotal.WithLabelValues("weather", "error").Inc()
		return nil, fmt.Errorf("%w: failed to decode forecast: %v", models.ErrFeedUnavailable, err)
	}

	metrics.FeedRequestsTotal.WithLabelValues("weather", "success").Inc()
	return &models.WeatherReport{
		GameID:      game.ID,
		Temperature: payload.Temperature,
		WindSpeed:   payload.WindSpeed,
		Humidity:    payload.Humidity,
		Condition:   payload.Condition,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

// Close releases client resources
func (c *Client) Close() error {
	return c.httpClient.Close()
}
