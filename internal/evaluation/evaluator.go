package evaluation

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fantasy-edge/internal/models"
)

// PredictFunc produces a prediction for one matchup using only history
// available before kickoff
type PredictFunc func(ctx context.Context, game *models.Game) (*models.PredictionResult, error)

// Evaluator replays completed matchups through a predictor and collects
// the outcomes
type Evaluator struct {
	predict PredictFunc
	logger  *logrus.Entry
}

// NewEvaluator creates an evaluator
func NewEvaluator(predict PredictFunc, logger *logrus.Entry) *Evaluator {
	return &Evaluator{
		predict: predict,
		logger:  logger,
	}
}

// Evaluate predicts every completed matchup and pairs each prediction with
// the final result. Matchups that cannot be predicted, usually for lack of
// history early in a season, are skipped.
func (e *Evaluator) Evaluate(ctx context.Context, games []*models.Game) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(games))
	skipped := 0
	for _, game := range games {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !game.IsFinal() {
			continue
		}

		result, err := e.predict(ctx, game)
		if err != nil {
			skipped++
			e.logger.WithError(err).WithField("matchup_id", game.ID).
				Debug("matchup skipped during evaluation")
			continue
		}

		outcomes = append(outcomes, Outcome{
			MatchupID:          game.ID,
			StartTime:          game.StartTime,
			HomeWinProbability: result.HomeWinProbability,
			Winner:             result.Winner,
			HomeWon:            game.HomeWon(),
		})
	}

	if skipped > 0 {
		e.logger.WithFields(logrus.Fields{
			"evaluated": len(outcomes),
			"skipped":   skipped,
		}).Info("evaluation pass complete")
	}
	return outcomes, nil
}
