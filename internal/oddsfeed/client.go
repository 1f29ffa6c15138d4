package oddsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fantasy-edge/internal/config"
	"github.com/yourusername/fantasy-edge/internal/metrics"
	"github.com/yourusername/fantasy-edge/internal/models"
)

// Client fetches market quotes from the external odds provider. It implements
// features.QuoteSource for the serving path.
type Client struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *logrus.Entry
}

// feedQuote is one quote as the provider serialises it. Prices arrive as
// decimal strings to avoid float drift in transit.
type feedQuote struct {
	Timestamp     time.Time `json:"timestamp"`
	Sportsbook    string    `json:"sportsbook"`
	HomeMoneyline *string   `json:"home_moneyline"`
	AwayMoneyline *string   `json:"away_moneyline"`
	Spread        *string   `json:"spread"`
	Total         *string   `json:"total"`
	OverPrice     *string   `json:"over_price"`
	UnderPrice    *string   `json:"under_price"`
}

// feedQuotesResponse is the provider envelope for the quote history endpoint
type feedQuotesResponse struct {
	GameID string      `json:"game_id"`
	Quotes []feedQuote `json:"quotes"`
}

// NewClient creates an odds feed client from configuration
func NewClient(cfg config.OddsFeedConfig, logger *logrus.Entry) *Client {
	httpCfg := DefaultHTTPClientConfig()
	if cfg.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.RetryAttempts > 0 {
		httpCfg.MaxRetries = cfg.RetryAttempts
	}
	if cfg.RateLimitPerSecond > 0 {
		httpCfg.RateLimit = cfg.RateLimitPerSecond
	}

	return &Client{
		httpClient: NewRateLimitedHTTPClient(httpCfg, logger),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

// Quotes retrieves the quote history for a matchup up to asOf, oldest first.
// Transport and provider failures are wrapped in models.ErrFeedUnavailable so
// the feature extractor can degrade to synthetic odds.
func (c *Client) Quotes(ctx context.Context, gameID uuid.UUID, asOf time.Time) ([]*models.OddsQuote, error) {
	endpoint := fmt.Sprintf("%s/v1/games/%s/odds?until=%s",
		c.baseURL, gameID, url.QueryEscape(asOf.UTC().Format(time.RFC3339)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create odds request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		metrics.FeedRequestsTotal.WithLabelValues("odds", "error").Inc()
		return nil, fmt.Errorf("%w: %v", models.ErrFeedUnavailable, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		metrics.FeedRequestsTotal.WithLabelValues("odds", "not_found").Inc()
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		metrics.FeedRequestsTotal.WithLabelValues("odds", "error").Inc()
		return nil, fmt.Errorf("%w: unexpected status %d", models.ErrFeedUnavailable, resp.StatusCode)
	}

	var payload feedQuotesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.FeedRequestsTotal.WithLabelValues("odds", "error").Inc()
		return nil, fmt.Errorf("%w: failed to decode response: %v", models.ErrFeedUnavailable, err)
	}

	quotes := make([]*models.OddsQuote, 0, len(payload.Quotes))
	for _, fq := range payload.Quotes {
		quote, err := fq.toModel(gameID)
		if err != nil {
			c.logger.WithError(err).WithField("sportsbook", fq.Sportsbook).
				Warn("skipping malformed quote")
			continue
		}
		if quote.Time.After(asOf) {
			continue
		}
		quotes = append(quotes, quote)
	}

	metrics.FeedRequestsTotal.WithLabelValues("odds", "success").Inc()
	return quotes, nil
}

// Close releases client resources
func (c *Client) Close() error {
	return c.httpClient.Close()
}

func (q *feedQuote) toModel(gameID uuid.UUID) (*models.OddsQuote, error) {
	quote := &models.OddsQuote{
		Time:       q.Timestamp,
		GameID:     gameID,
		Sportsbook: q.Sportsbook,
	}

	fields := []struct {
		raw  *string
		dest **float64
		name string
	}{
		{q.HomeMoneyline, &quote.HomeMoneyline, "home_moneyline"},
		{q.AwayMoneyline, &quote.AwayMoneyline, "away_moneyline"},
		{q.Spread, &quote.Spread, "spread"},
		{q.Total, &quote.Total, "total"},
		{q.OverPrice, &quote.OverPrice, "over_price"},
		{q.UnderPrice, &quote.UnderPrice, "under_price"},
	}
	for _, f := range fields {
		if f.raw == nil {
			continue
		}
		d, err := decimal.NewFromString(*f.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", f.name, *f.raw, err)
		}
		v, _ := d.Float64()
		*f.dest = &v
	}

	return quote, nil
}
