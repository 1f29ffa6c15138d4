package evaluation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/fantasy-edge/internal/models"
)

func seasonOutcomes(days int, prob float64, correct bool) []Outcome {
	start := time.Date(2023, 10, 1, 17, 0, 0, 0, time.UTC)
	outcomes := make([]Outcome, days)
	for i := range outcomes {
		outcomes[i] = Outcome{
			MatchupID:          uuid.New(),
			StartTime:          start.AddDate(0, 0, i),
			HomeWinProbability: prob,
			Winner:             models.WinnerHome,
			HomeWon:            correct,
		}
	}
	return outcomes
}

func TestRunWalkForward(t *testing.T) {
	outcomes := seasonOutcomes(28, 0.65, true)
	result, err := RunWalkForward(outcomes, WalkForwardConfig{
		WindowDays:        7,
		StepDays:          7,
		MinGamesPerWindow: 3,
	})
	if err != nil {
		t.Fatalf("RunWalkForward failed: %v", err)
	}
	if len(result.Windows) != 4 {
		t.Fatalf("expected 4 windows, got %d", len(result.Windows))
	}
	if result.ConsistencyScore != 1.0 {
		t.Fatalf("expected full consistency, got %f", result.ConsistencyScore)
	}
	if result.Aggregated.Samples != 28 {
		t.Fatalf("expected 28 aggregated samples, got %d", result.Aggregated.Samples)
	}
}

func TestRunWalkForwardSkipsThinWindows(t *testing.T) {
	outcomes := seasonOutcomes(5, 0.6, true)
	result, err := RunWalkForward(outcomes, WalkForwardConfig{
		WindowDays:        2,
		StepDays:          2,
		MinGamesPerWindow: 3,
	})
	if err != nil {
		t.Fatalf("RunWalkForward failed: %v", err)
	}
	if len(result.Windows) != 0 {
		t.Fatalf("expected all windows skipped, got %d", len(result.Windows))
	}
}

func TestRunWalkForwardRejectsBadConfig(t *testing.T) {
	if _, err := RunWalkForward(seasonOutcomes(5, 0.6, true), WalkForwardConfig{}); err == nil {
		t.Fatalf("expected error for zero window size")
	}
}

func TestRunBootstrap(t *testing.T) {
	outcomes := seasonOutcomes(40, 0.65, true)
	result, err := RunBootstrap(context.Background(), outcomes, BootstrapConfig{
		Iterations:      200,
		ConfidenceLevel: 0.95,
		Seed:            7,
	})
	if err != nil {
		t.Fatalf("RunBootstrap failed: %v", err)
	}
	// Every outcome is a correct home pick, so resampling cannot move accuracy.
	if result.MeanAccuracy != 1.0 {
		t.Fatalf("expected mean accuracy 1.0, got %f", result.MeanAccuracy)
	}
	if result.ProbabilityAboveFlip != 1.0 {
		t.Fatalf("expected probability above flip 1.0, got %f", result.ProbabilityAboveFlip)
	}
	if result.AccuracyIntervals["low"] > result.AccuracyIntervals["high"] {
		t.Fatalf("interval bounds inverted")
	}
}

func TestRunBootstrapEmptyInput(t *testing.T) {
	if _, err := RunBootstrap(context.Background(), nil, BootstrapConfig{}); err == nil {
		t.Fatalf("expected error for empty input")
	}
}
