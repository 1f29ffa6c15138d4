package weather

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

func testWeatherLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func outdoorFixture() (*models.Game, *models.Team) {
	teamID := uuid.New()
	game := &models.Game{
		ID:         uuid.New(),
		HomeTeamID: teamID,
		StartTime:  time.Date(2024, 12, 21, 18, 0, 0, 0, time.UTC),
	}
	team := &models.Team{ID: teamID, Name: "Outdoor", Latitude: 44.5013, Longitude: -88.0622}
	return game, team
}

func TestForecastFetchesVenueConditions(t *testing.T) {
	game, team := outdoorFixture()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "lat=44.5013")
		fmt.Fprint(w, `{"temperature_f": 18.5, "wind_mph": 22, "humidity_pct": 71, "condition": "snow"}`)
	}))
	defer srv.Close()

	client := NewClient(config.WeatherConfig{
		Enabled: true, BaseURL: srv.URL, APIKey: "k", TimeoutSeconds: 5,
	}, testWeatherLogger())
	defer client.Close()

	report, err := client.Forecast(context.Background(), game, team)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, game.ID, report.GameID)
	assert.InDelta(t, 18.5, report.Temperature, 1e-9)
	assert.InDelta(t, 22, report.WindSpeed, 1e-9)
	assert.Equal(t, "snow", report.Condition)
	assert.False(t, report.FetchedAt.IsZero())
}

func TestForecastDisabledReturnsNil(t *testing.T) {
	game, team := outdoorFixture()

	client := NewClient(config.WeatherConfig{Enabled: false}, testWeatherLogger())
	report, err := client.Forecast(context.Background(), game, team)
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestForecastUnknownVenueReturnsNil(t *testing.T) {
	game, _ := outdoorFixture()

	client := NewClient(config.WeatherConfig{Enabled: true, BaseURL: "http://unused"}, testWeatherLogger())
	report, err := client.Forecast(context.Background(), game, &models.Team{ID: uuid.New()})
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestForecastServerErrorIsFeedUnavailable(t *testing.T) {
	game, team := outdoorFixture()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(config.WeatherConfig{Enabled: true, BaseURL: srv.URL, TimeoutSeconds: 5}, testWeatherLogger())
	defer client.Close()

	_, err := client.Forecast(context.Background(), game, team)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrFeedUnavailable)
}
