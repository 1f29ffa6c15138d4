package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fantasy-edge/internal/models"
	"github.com/yourusername/fantasy-edge/internal/oddsfeed"
	"github.com/yourusername/fantasy-edge/internal/repository"
	"github.com/yourusername/fantasy-edge/internal/weather"
)

// syncUpcomingLimit bounds how many matchups one sync pass touches
const syncUpcomingLimit = 200

// FeedSyncService keeps the stored market and weather data current for
// upcoming matchups
type FeedSyncService struct {
	repos         *repository.Repositories
	oddsClient    *oddsfeed.Client
	weatherClient *weather.Client
	logger        *logrus.Entry
}

// NewFeedSyncService creates a feed sync service. Either client may be nil,
// which disables the corresponding sync.
func NewFeedSyncService(
	repos *repository.Repositories,
	oddsClient *oddsfeed.Client,
	weatherClient *weather.Client,
	logger *logrus.Entry,
) *FeedSyncService {
	return &FeedSyncService{
		repos:         repos,
		oddsClient:    oddsClient,
		weatherClient: weatherClient,
		logger:        logger,
	}
}

// SyncOdds pulls fresh quotes for upcoming matchups and appends the ones
// newer than the stored history
func (s *FeedSyncService) SyncOdds(ctx context.Context) error {
	if s.oddsClient == nil {
		return nil
	}

	games, err := s.repos.Game.GetUpcoming(ctx, syncUpcomingLimit)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, game := range games {
		quotes, err := s.oddsClient.Quotes(ctx, game.ID, now)
		if err != nil {
			s.logger.WithError(err).WithField("matchup_id", game.ID).
				Warn("odds sync skipped matchup")
			continue
		}
		if len(quotes) == 0 {
			continue
		}

		var cutoff time.Time
		latest, err := s.repos.Odds.GetLatest(ctx, game.ID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return err
		}
		if latest != nil {
			cutoff = latest.Time
		}

		fresh := make([]*models.OddsQuote, 0, len(quotes))
		for _, q := range quotes {
			if q.Time.After(cutoff) {
				fresh = append(fresh, q)
			}
		}
		if len(fresh) == 0 {
			continue
		}

		if err := s.repos.Odds.InsertBatch(ctx, fresh); err != nil {
			return err
		}
		s.logger.WithFields(logrus.Fields{
			"matchup_id": game.ID,
			"quotes":     len(fresh),
		}).Debug("odds history extended")
	}

	return nil
}

// SyncWeather refreshes venue conditions for upcoming matchups
func (s *FeedSyncService) SyncWeather(ctx context.Context) error {
	if s.weatherClient == nil || !s.weatherClient.Enabled() {
		return nil
	}

	games, err := s.repos.Game.GetUpcoming(ctx, syncUpcomingLimit)
	if err != nil {
		return err
	}

	for _, game := range games {
		homeTeam, err := s.repos.Team.GetByID(ctx, game.HomeTeamID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			return err
		}

		report, err := s.weatherClient.Forecast(ctx, game, homeTeam)
		if err != nil {
			s.logger.WithError(err).WithField("matchup_id", game.ID).
				Warn("weather sync skipped matchup")
			continue
		}
		if report == nil {
			continue
		}

		if err := s.repos.Weather.Upsert(ctx, report); err != nil {
			return err
		}
	}

	return nil
}

// HandleStreamQuote persists one live line update. Registered as the
// websocket stream handler.
func (s *FeedSyncService) HandleStreamQuote(quote *models.OddsQuote) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.repos.Odds.Insert(ctx, quote)
}
