package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fantasy-edge/internal/config"
	"github.com/yourusername/fantasy-edge/internal/features"
	"github.com/yourusername/fantasy-edge/internal/logger"
	"github.com/yourusername/fantasy-edge/internal/models"
	"github.com/yourusername/fantasy-edge/internal/predictor"
	"github.com/yourusername/fantasy-edge/internal/repository"
	"github.com/yourusername/fantasy-edge/internal/training"
)

const trainingDateLayout = "2006-01-02"

// TrainingService runs the full retraining workflow: load the historical
// corpus, train and gate every model family, then register the surviving
// artifacts
type TrainingService struct {
	cfg      config.TrainingConfig
	sportKey string
	repos    *repository.Repositories
	seed     int64
	logger   *logrus.Entry
	tlog     *logger.TrainingLogger
}

// NewTrainingService creates a training service
func NewTrainingService(
	cfg config.TrainingConfig,
	sportKey string,
	repos *repository.Repositories,
	seed int64,
	base *logrus.Logger,
) *TrainingService {
	return &TrainingService{
		cfg:      cfg,
		sportKey: sportKey,
		repos:    repos,
		seed:     seed,
		logger:   logger.NewComponentLogger(base, "training"),
		tlog:     logger.NewTrainingLogger(base),
	}
}

// Retrain executes the pipeline over the configured date window and returns
// the artifacts that passed the bias gate
func (s *TrainingService) Retrain(ctx context.Context) ([]*models.ModelArtifact, error) {
	start, err := time.Parse(trainingDateLayout, s.cfg.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid training start date %q: %w", s.cfg.StartDate, err)
	}
	end, err := time.Parse(trainingDateLayout, s.cfg.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid training end date %q: %w", s.cfg.EndDate, err)
	}

	snap, games, err := s.loadCorpus(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: no completed games in training window", models.ErrDataInsufficient)
	}

	s.logger.WithFields(logrus.Fields{
		"games": len(games),
		"from":  s.cfg.StartDate,
		"to":    s.cfg.EndDate,
	}).Info("training corpus loaded")

	assembler := features.NewAssembler(
		snap,
		features.SnapshotQuoteSource{Snapshot: snap},
		features.NewStatCache(time.Hour),
		s.cfg.MinTeamGames,
		s.logger,
	)
	builder := training.NewDatasetBuilder(assembler, s.cfg.MinTeamGames, s.seed, s.tlog)
	pipeline := training.NewPipeline(s.cfg, builder, s.seed, s.tlog)

	artifacts, err := pipeline.Run(ctx, games)
	if err != nil {
		return nil, err
	}

	for _, artifact := range artifacts {
		s.register(ctx, artifact)
	}

	return artifacts, nil
}

// register records an artifact in the registry and retires the version it
// supersedes. Registry trouble is logged, not fatal: the artifact files on
// disk remain the source of truth for serving.
func (s *TrainingService) register(ctx context.Context, artifact *models.ModelArtifact) {
	meta := artifact.Metadata

	prev, err := s.repos.Artifact.GetLatestByType(ctx, meta.ModelType)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.WithError(err).WithField("model_type", meta.ModelType).
			Warn("artifact registry lookup failed")
		prev = nil
	}

	path := predictor.ArtifactPath(s.cfg.ArtifactDir, meta.ModelType, meta.Version)
	if err := s.repos.Artifact.Register(ctx, &meta, path); err != nil {
		s.logger.WithError(err).WithField("model_type", meta.ModelType).
			Warn("artifact registration failed")
		return
	}

	if prev != nil && prev.Version != meta.Version {
		if err := s.repos.Artifact.MarkStale(ctx, prev.ModelType, prev.Version); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"model_type": prev.ModelType,
				"version":    prev.Version,
			}).Warn("failed to mark superseded artifact stale")
		}
	}
}

// loadCorpus builds the immutable snapshot backing feature extraction for the
// whole training window
func (s *TrainingService) loadCorpus(ctx context.Context, start, end time.Time) (*features.MemorySnapshot, []*models.Game, error) {
	all, err := s.repos.Game.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load training games: %w", err)
	}

	games := make([]*models.Game, 0, len(all))
	teamIDs := make(map[string]bool)
	for _, g := range all {
		if g.SportKey != s.sportKey || !g.IsFinal() {
			continue
		}
		games = append(games, g)
		teamIDs[g.HomeTeamID.String()] = true
		teamIDs[g.AwayTeamID.String()] = true
	}

	teams, err := s.repos.Team.GetBySport(ctx, s.sportKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load teams: %w", err)
	}

	var stats []*models.PlayerGameStat
	var injuries []*models.InjuryReport
	for _, team := range teams {
		if !teamIDs[team.ID.String()] {
			continue
		}
		teamStats, err := s.repos.PlayerStat.GetByTeam(ctx, team.ID, end)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load player stats: %w", err)
		}
		stats = append(stats, teamStats...)

		teamInjuries, err := s.repos.Injury.GetActiveByTeam(ctx, team.ID, end)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load injury reports: %w", err)
		}
		injuries = append(injuries, teamInjuries...)
	}

	var quotes []*models.OddsQuote
	var weather []*models.WeatherReport
	for _, game := range games {
		gameQuotes, err := s.repos.Odds.GetByGameID(ctx, game.ID, time.Time{}, end)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load odds history: %w", err)
		}
		quotes = append(quotes, gameQuotes...)

		report, err := s.repos.Weather.GetByGameID(ctx, game.ID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			return nil, nil, fmt.Errorf("failed to load weather reports: %w", err)
		}
		weather = append(weather, report)
	}

	return features.NewMemorySnapshot(games, stats, injuries, quotes, weather, teams), games, nil
}
