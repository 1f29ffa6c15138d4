package service

import (
	"context"
	"encoding/json"
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
	"github.com/yourusername/fantasy-edge/internal/oddsfeed"
	"github.com/yourusername/fantasy-edge/internal/repository"
)

func testServiceLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

type fakeGameRepo struct {
	repository.GameRepository
	byRange  []*models.Game
	upcoming []*models.Game
}

func (f *fakeGameRepo) GetByDateRange(_ context.Context, _, _ time.Time) ([]*models.Game, error) {
	return f.byRange, nil
}

func (f *fakeGameRepo) GetUpcoming(_ context.Context, _ int) ([]*models.Game, error) {
	return f.upcoming, nil
}

type fakeTeamRepo struct {
	repository.TeamRepository
	bySport []*models.Team
}

func (f *fakeTeamRepo) GetBySport(_ context.Context, _ string) ([]*models.Team, error) {
	return f.bySport, nil
}

type fakeOddsRepo struct {
	repository.OddsRepository
	latest   *models.OddsQuote
	inserted []*models.OddsQuote
	batches  [][]*models.OddsQuote
}

func (f *fakeOddsRepo) GetLatest(_ context.Context, _ uuid.UUID) (*models.OddsQuote, error) {
	if f.latest == nil {
		return nil, models.ErrNotFound
	}
	return f.latest, nil
}

func (f *fakeOddsRepo) Insert(_ context.Context, quote *models.OddsQuote) error {
	f.inserted = append(f.inserted, quote)
	return nil
}

func (f *fakeOddsRepo) InsertBatch(_ context.Context, quotes []*models.OddsQuote) error {
	f.batches = append(f.batches, quotes)
	return nil
}

func trainingTestConfig() config.TrainingConfig {
	return config.TrainingConfig{
		ArtifactDir:        "/tmp/artifacts",
		MinSamples:         100,
		MinTeamGames:       3,
		TrainFraction:      0.7,
		ValidationFraction: 0.15,
		BiasGateLow:        0.45,
		BiasGateHigh:       0.55,
		MaxRetrainAttempts: 2,
		StartDate:          "2023-09-01",
		EndDate:            "2024-02-01",
	}
}

func TestTrainingServiceRejectsInvalidDates(t *testing.T) {
	cfg := trainingTestConfig()
	cfg.StartDate = "September 1st"

	repos := &repository.Repositories{Game: &fakeGameRepo{}}
	svc := NewTrainingService(cfg, "nfl", repos, 42, testServiceLogger())

	_, err := svc.Retrain(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start date")
}

func TestTrainingServiceRequiresCompletedGames(t *testing.T) {
	// Scheduled games without final scores cannot be labelled.
	games := []*models.Game{
		{
			ID:         uuid.New(),
			SportKey:   "nfl",
			HomeTeamID: uuid.New(),
			AwayTeamID: uuid.New(),
			StartTime:  time.Date(2023, 10, 1, 17, 0, 0, 0, time.UTC),
		},
	}
	repos := &repository.Repositories{
		Game: &fakeGameRepo{byRange: games},
		Team: &fakeTeamRepo{},
	}
	svc := NewTrainingService(trainingTestConfig(), "nfl", repos, 42, testServiceLogger())

	_, err := svc.Retrain(context.Background())
	assert.ErrorIs(t, err, models.ErrDataInsufficient)
}

func TestSyncOddsAppendsOnlyFreshQuotes(t *testing.T) {
	gameID := uuid.New()
	game := &models.Game{
		ID:         gameID,
		SportKey:   "nfl",
		HomeTeamID: uuid.New(),
		AwayTeamID: uuid.New(),
		StartTime:  time.Now().UTC().Add(24 * time.Hour),
	}

	stale := "2024-01-15T16:00:00Z"
	fresh := "2024-01-15T18:00:00Z"
	price := "-140"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"game_id": gameID.String(),
			"quotes": []map[string]interface{}{
				{"timestamp": stale, "sportsbook": "pinnacle", "home_moneyline": price, "away_moneyline": "+120"},
				{"timestamp": fresh, "sportsbook": "pinnacle", "home_moneyline": price, "away_moneyline": "+125"},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	client := oddsfeed.NewClient(config.OddsFeedConfig{
		BaseURL:            srv.URL,
		APIKey:             "test-key",
		TimeoutSeconds:     5,
		RetryAttempts:      1,
		RateLimitPerSecond: 100,
	}, logrus.NewEntry(testServiceLogger()))
	defer client.Close()

	oddsRepo := &fakeOddsRepo{
		latest: &models.OddsQuote{
			Time:   time.Date(2024, 1, 15, 17, 0, 0, 0, time.UTC),
			GameID: gameID,
		},
	}
	repos := &repository.Repositories{
		Game: &fakeGameRepo{upcoming: []*models.Game{game}},
		Odds: oddsRepo,
	}
	svc := NewFeedSyncService(repos, client, nil, logrus.NewEntry(testServiceLogger()))

	require.NoError(t, svc.SyncOdds(context.Background()))

	// Only the 18:00 quote is newer than the stored history.
	require.Len(t, oddsRepo.batches, 1)
	require.Len(t, oddsRepo.batches[0], 1)
	assert.Equal(t, fresh, oddsRepo.batches[0][0].Time.Format(time.RFC3339))
}

func TestSyncOddsIsNoopWithoutClient(t *testing.T) {
	svc := NewFeedSyncService(&repository.Repositories{}, nil, nil, logrus.NewEntry(testServiceLogger()))
	assert.NoError(t, svc.SyncOdds(context.Background()))
}

func TestHandleStreamQuotePersists(t *testing.T) {
	oddsRepo := &fakeOddsRepo{}
	repos := &repository.Repositories{Odds: oddsRepo}
	svc := NewFeedSyncService(repos, nil, nil, logrus.NewEntry(testServiceLogger()))

	quote := &models.OddsQuote{
		Time:   time.Now().UTC(),
		GameID: uuid.New(),
	}
	require.NoError(t, svc.HandleStreamQuote(quote))
	require.Len(t, oddsRepo.inserted, 1)
	assert.Equal(t, quote.GameID, oddsRepo.inserted[0].GameID)
}
