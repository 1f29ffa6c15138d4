package oddsfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fantasy-edge/internal/config"
	"github.com/yourusername/fantasy-edge/internal/models"
)

func testFeedLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func testFeedConfig(baseURL string) config.OddsFeedConfig {
	return config.OddsFeedConfig{
		BaseURL:            baseURL,
		APIKey:             "test-key",
		TimeoutSeconds:     5,
		RetryAttempts:      1,
		RateLimitPerSecond: 100,
	}
}

func TestClientQuotesParsesDecimalPrices(t *testing.T) {
	gameID := uuid.New()
	asOf := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Contains(t, r.URL.Path, gameID.String())

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"game_id": %q,
			"quotes": [
				{"timestamp": "2024-01-15T12:00:00Z", "sportsbook": "alpha",
				 "home_moneyline": "-150", "away_moneyline": "+130", "spread": "-3.5", "total": "221.5"},
				{"timestamp": "2024-01-15T17:00:00Z", "sportsbook": "alpha",
				 "home_moneyline": "-165", "away_moneyline": "140"},
				{"timestamp": "2024-01-15T19:00:00Z", "sportsbook": "alpha",
				 "home_moneyline": "-180", "away_moneyline": "155"}
			]
		}`, gameID)
	}))
	defer srv.Close()

	client := NewClient(testFeedConfig(srv.URL), testFeedLogger())
	defer client.Close()

	quotes, err := client.Quotes(context.Background(), gameID, asOf)
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)

	// The 19:00 quote is after asOf and must be dropped.
	require.Len(t, quotes, 2)
	first := quotes[0]
	assert.Equal(t, gameID, first.GameID)
	require.True(t, first.HasMoneyline())
	assert.InDelta(t, -150, *first.HomeMoneyline, 1e-9)
	assert.InDelta(t, 130, *first.AwayMoneyline, 1e-9)
	require.NotNil(t, first.Spread)
	assert.InDelta(t, -3.5, *first.Spread, 1e-9)
	require.NotNil(t, first.Total)
	assert.InDelta(t, 221.5, *first.Total, 1e-9)
	assert.Nil(t, first.OverPrice)
}

func TestClientQuotesSkipsMalformedPrices(t *testing.T) {
	gameID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"quotes": [
			{"timestamp": "2024-01-15T12:00:00Z", "sportsbook": "alpha", "home_moneyline": "garbage"},
			{"timestamp": "2024-01-15T12:05:00Z", "sportsbook": "beta", "home_moneyline": "-110", "away_moneyline": "-110"}
		]}`)
	}))
	defer srv.Close()

	client := NewClient(testFeedConfig(srv.URL), testFeedLogger())
	defer client.Close()

	quotes, err := client.Quotes(context.Background(), gameID, time.Now())
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "beta", quotes[0].Sportsbook)
}

func TestClientQuotesUnknownGameReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(testFeedConfig(srv.URL), testFeedLogger())
	defer client.Close()

	quotes, err := client.Quotes(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestClientQuotesServerErrorIsFeedUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(testFeedConfig(srv.URL), testFeedLogger())
	defer client.Close()

	_, err := client.Quotes(context.Background(), uuid.New(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrFeedUnavailable)
}

func TestClientQuotesRetriesServerErrors(t *testing.T) {
	gameID := uuid.New()
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, `{"quotes": [{"timestamp": "2024-01-15T12:00:00Z", "home_moneyline": "-120", "away_moneyline": "100"}]}`)
	}))
	defer srv.Close()

	client := NewClient(testFeedConfig(srv.URL), testFeedLogger())
	defer client.Close()

	quotes, err := client.Quotes(context.Background(), gameID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Len(t, quotes, 1)
}
