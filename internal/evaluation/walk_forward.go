package evaluation

import (
	"fmt"
	"sort"
	"time"
)

// WalkForwardConfig configures rolling-window evaluation
type WalkForwardConfig struct {
	WindowDays        int
	StepDays          int
	MinGamesPerWindow int
}

// WalkForwardWindow represents prediction quality over one time slice
type WalkForwardWindow struct {
	WindowID int       `json:"window_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Metrics  Metrics   `json:"metrics"`
}

// WalkForwardResult represents rolling-window evaluation output
type WalkForwardResult struct {
	Windows          []WalkForwardWindow `json:"windows"`
	Aggregated       Metrics             `json:"aggregated_metrics"`
	ConsistencyScore float64             `json:"consistency_score"`
	DriftScore       float64             `json:"drift_score"`
}

// RunWalkForward slices outcomes into rolling time windows and evaluates
// each slice independently. Windows with too few games are skipped.
func RunWalkForward(outcomes []Outcome, cfg WalkForwardConfig) (WalkForwardResult, error) {
	if cfg.WindowDays <= 0 {
		return WalkForwardResult{}, fmt.Errorf("window days must be positive")
	}
	if cfg.StepDays <= 0 {
		cfg.StepDays = cfg.WindowDays
	}
	if len(outcomes) == 0 {
		return WalkForwardResult{}, nil
	}

	sorted := append([]Outcome{}, outcomes...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	start := sorted[0].StartTime
	end := sorted[len(sorted)-1].StartTime

	windows := []WalkForwardWindow{}
	windowID := 0
	for current := start; current.Before(end); current = current.AddDate(0, 0, cfg.StepDays) {
		windowEnd := current.AddDate(0, 0, cfg.WindowDays)

		slice := []Outcome{}
		for _, o := range sorted {
			if !o.StartTime.Before(current) && o.StartTime.Before(windowEnd) {
				slice = append(slice, o)
			}
		}
		windowID++
		if len(slice) < cfg.MinGamesPerWindow {
			continue
		}

		windows = append(windows, WalkForwardWindow{
			WindowID: windowID,
			Start:    current,
			End:      windowEnd,
			Metrics:  CalculateMetrics(slice, current, windowEnd),
		})
	}

	return WalkForwardResult{
		Windows:          windows,
		Aggregated:       CalculateMetrics(sorted, start, end),
		ConsistencyScore: calculateConsistency(windows),
		DriftScore:       calculateDrift(windows),
	}, nil
}

// calculateConsistency is the fraction of windows beating a coin flip
func calculateConsistency(windows []WalkForwardWindow) float64 {
	if len(windows) == 0 {
		return 0
	}
	better := 0
	for _, w := range windows {
		if w.Metrics.Accuracy > 0.5 {
			better++
		}
	}
	return float64(better) / float64(len(windows))
}

// calculateDrift compares early-window accuracy against late-window accuracy.
// A positive score means quality decays as the season progresses, the usual
// sign that models need retraining.
func calculateDrift(windows []WalkForwardWindow) float64 {
	if len(windows) < 2 {
		return 0
	}
	half := len(windows) / 2
	early := 0.0
	late := 0.0
	for i, w := range windows {
		if i < half {
			early += w.Metrics.Accuracy
		} else {
			late += w.Metrics.Accuracy
		}
	}
	early /= float64(half)
	late /= float64(len(windows) - half)
	if early == 0 {
		return 0
	}
	return (early - late) / early
}
