package evaluation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fantasy-edge/internal/models"
)

func intPtr(v int) *int { return &v }

func finalGame(home, away int, start time.Time) *models.Game {
	return &models.Game{
		ID:         uuid.New(),
		SportKey:   "nfl",
		HomeTeamID: uuid.New(),
		AwayTeamID: uuid.New(),
		StartTime:  start,
		HomeScore:  intPtr(home),
		AwayScore:  intPtr(away),
	}
}

func TestEvaluatorCollectsOutcomes(t *testing.T) {
	start := time.Date(2023, 11, 5, 18, 0, 0, 0, time.UTC)
	games := []*models.Game{
		finalGame(27, 20, start),
		finalGame(14, 31, start.AddDate(0, 0, 7)),
		// Scheduled game, no final score yet.
		{ID: uuid.New(), SportKey: "nfl", HomeTeamID: uuid.New(), AwayTeamID: uuid.New(), StartTime: start.AddDate(0, 0, 14)},
	}

	predict := func(_ context.Context, game *models.Game) (*models.PredictionResult, error) {
		return &models.PredictionResult{
			MatchupID:          game.ID,
			HomeWinProbability: 0.6,
			AwayWinProbability: 0.4,
			Winner:             models.WinnerHome,
		}, nil
	}

	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	evaluator := NewEvaluator(predict, logrus.NewEntry(l))

	outcomes, err := evaluator.Evaluate(context.Background(), games)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if !outcomes[0].HomeWon {
		t.Fatalf("expected first outcome to record a home win")
	}
	if outcomes[1].HomeWon {
		t.Fatalf("expected second outcome to record an away win")
	}
}

func TestEvaluatorSkipsFailedPredictions(t *testing.T) {
	start := time.Date(2023, 11, 5, 18, 0, 0, 0, time.UTC)
	games := []*models.Game{
		finalGame(10, 7, start),
		finalGame(21, 28, start.AddDate(0, 0, 7)),
	}

	calls := 0
	predict := func(_ context.Context, game *models.Game) (*models.PredictionResult, error) {
		calls++
		if calls == 1 {
			return nil, fmt.Errorf("not enough history")
		}
		return &models.PredictionResult{
			MatchupID:          game.ID,
			HomeWinProbability: 0.45,
			AwayWinProbability: 0.55,
			Winner:             models.WinnerAway,
		}, nil
	}

	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	evaluator := NewEvaluator(predict, logrus.NewEntry(l))

	outcomes, err := evaluator.Evaluate(context.Background(), games)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	if !outcomes[0].Correct() {
		t.Fatalf("expected the surviving outcome to be a correct away pick")
	}
}
