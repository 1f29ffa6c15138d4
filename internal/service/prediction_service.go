// Package service wires the persistence, feed and model layers into the
// serving and training workflows.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fantasy-edge/internal/config"
	"github.com/yourusername/fantasy-edge/internal/ensemble"
	"github.com/yourusername/fantasy-edge/internal/features"
	"github.com/yourusername/fantasy-edge/internal/models"
	"github.com/yourusername/fantasy-edge/internal/repository"
)

// PredictionService produces ensemble predictions for stored matchups
type PredictionService struct {
	repos        *repository.Repositories
	loader       *repository.SnapshotLoader
	combiner     *ensemble.Combiner
	liveQuotes   features.QuoteSource
	statCache    *features.StatCache
	minTeamGames int
	logger       *logrus.Entry
}

// NewPredictionService creates a prediction service. liveQuotes may be nil,
// in which case the stored odds history serves as the quote source.
func NewPredictionService(
	repos *repository.Repositories,
	combiner *ensemble.Combiner,
	liveQuotes features.QuoteSource,
	cfg config.TrainingConfig,
	logger *logrus.Entry,
) *PredictionService {
	return &PredictionService{
		repos:        repos,
		loader:       repository.NewSnapshotLoader(repos),
		combiner:     combiner,
		liveQuotes:   liveQuotes,
		statCache:    features.NewStatCache(10 * time.Minute),
		minTeamGames: cfg.MinTeamGames,
		logger:       logger,
	}
}

// Predict generates the ensemble prediction for a matchup by ID
func (s *PredictionService) Predict(ctx context.Context, matchupID uuid.UUID) (*models.PredictionResult, error) {
	game, err := s.repos.Game.GetByID(ctx, matchupID)
	if err != nil {
		return nil, err
	}
	return s.PredictGame(ctx, game)
}

// PredictGame generates the ensemble prediction for a loaded matchup. The
// historical view is cut at the game's start time, the same boundary the
// training data uses.
func (s *PredictionService) PredictGame(ctx context.Context, game *models.Game) (*models.PredictionResult, error) {
	snap, err := s.loader.Load(ctx, game, game.StartTime)
	if err != nil {
		return nil, err
	}

	quotes := s.liveQuotes
	if quotes == nil {
		quotes = features.SnapshotQuoteSource{Snapshot: snap}
	}

	assembler := features.NewAssembler(snap, quotes, s.statCache, s.minTeamGames, s.logger)
	gf, err := assembler.Assemble(ctx, game)
	if err != nil {
		return nil, err
	}

	result, err := s.combiner.Predict(ctx, gf)
	if err != nil {
		return nil, err
	}

	// The audit log is best effort; a write failure must not drop the answer.
	if recErr := s.repos.Prediction.Record(ctx, result); recErr != nil {
		s.logger.WithError(recErr).WithField("matchup_id", game.ID).
			Warn("failed to record prediction")
	}

	return result, nil
}

// PredictUpcoming predicts every unplayed matchup, skipping ones that fail
func (s *PredictionService) PredictUpcoming(ctx context.Context, limit int) ([]*models.PredictionResult, error) {
	games, err := s.repos.Game.GetUpcoming(ctx, limit)
	if err != nil {
		return nil, err
	}

	results := make([]*models.PredictionResult, 0, len(games))
	for _, game := range games {
		result, err := s.PredictGame(ctx, game)
		if err != nil {
			s.logger.WithError(err).WithField("matchup_id", game.ID).
				Warn("skipping matchup prediction")
			continue
		}
		results = append(results, result)
	}

	return results, nil
}
