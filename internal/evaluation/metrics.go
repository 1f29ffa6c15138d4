// Package evaluation measures how well stored predictions line up with the
// final scores they predicted.
package evaluation

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/fantasy-edge/internal/models"
)

// logLossFloor keeps a single certain-and-wrong prediction from dominating
// the aggregate
const logLossFloor = 1e-9

// calibrationBins is the number of equal-width probability buckets
const calibrationBins = 10

// Outcome pairs one prediction with the matchup's final result
type Outcome struct {
	MatchupID          uuid.UUID `json:"matchup_id"`
	StartTime          time.Time `json:"start_time"`
	HomeWinProbability float64   `json:"home_win_probability"`
	Winner             string    `json:"winner"`
	HomeWon            bool      `json:"home_won"`
}

// Correct reports whether the picked side won. No-play outcomes are never
// counted as correct.
func (o Outcome) Correct() bool {
	switch o.Winner {
	case models.WinnerHome:
		return o.HomeWon
	case models.WinnerAway:
		return !o.HomeWon
	default:
		return false
	}
}

// CalibrationBin aggregates outcomes whose predicted probability fell in
// [Low, High)
type CalibrationBin struct {
	Low       float64 `json:"low"`
	High      float64 `json:"high"`
	Predicted float64 `json:"predicted"`
	Observed  float64 `json:"observed"`
	Count     int     `json:"count"`
}

// Metrics represents prediction quality over a set of completed matchups
type Metrics struct {
	Samples          int              `json:"samples"`
	Decided          int              `json:"decided"`
	NoPlays          int              `json:"no_plays"`
	Accuracy         float64          `json:"accuracy"`
	BrierScore       float64          `json:"brier_score"`
	LogLoss          float64          `json:"log_loss"`
	HomePickRate     float64          `json:"home_pick_rate"`
	HomeWinRate      float64          `json:"home_win_rate"`
	CalibrationError float64          `json:"calibration_error"`
	Bins             []CalibrationBin `json:"bins"`
	StartDate        time.Time        `json:"start_date"`
	EndDate          time.Time        `json:"end_date"`
}

// CalculateMetrics calculates prediction metrics from matched outcomes
func CalculateMetrics(outcomes []Outcome, start, end time.Time) Metrics {
	metrics := Metrics{
		StartDate: start,
		EndDate:   end,
		Samples:   len(outcomes),
	}
	if len(outcomes) == 0 {
		return metrics
	}

	correct := 0
	homePicks := 0
	homeWins := 0
	brier := 0.0
	logLoss := 0.0
	for _, o := range outcomes {
		actual := 0.0
		if o.HomeWon {
			actual = 1.0
			homeWins++
		}
		diff := o.HomeWinProbability - actual
		brier += diff * diff
		logLoss += -actual*math.Log(clampProb(o.HomeWinProbability)) -
			(1-actual)*math.Log(clampProb(1-o.HomeWinProbability))

		switch o.Winner {
		case models.WinnerHome:
			metrics.Decided++
			homePicks++
		case models.WinnerAway:
			metrics.Decided++
		default:
			metrics.NoPlays++
		}
		if o.Correct() {
			correct++
		}
	}

	n := float64(len(outcomes))
	metrics.BrierScore = brier / n
	metrics.LogLoss = logLoss / n
	metrics.HomeWinRate = float64(homeWins) / n
	if metrics.Decided > 0 {
		metrics.Accuracy = float64(correct) / float64(metrics.Decided)
		metrics.HomePickRate = float64(homePicks) / float64(metrics.Decided)
	}

	metrics.Bins = calculateCalibration(outcomes)
	metrics.CalibrationError = calculateCalibrationError(metrics.Bins, len(outcomes))

	return metrics
}

// ToJSON exports metrics to JSON
func (m Metrics) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

func calculateCalibration(outcomes []Outcome) []CalibrationBin {
	bins := make([]CalibrationBin, calibrationBins)
	width := 1.0 / float64(calibrationBins)
	for i := range bins {
		bins[i].Low = float64(i) * width
		bins[i].High = bins[i].Low + width
	}

	sums := make([]float64, calibrationBins)
	wins := make([]int, calibrationBins)
	for _, o := range outcomes {
		idx := int(o.HomeWinProbability / width)
		if idx >= calibrationBins {
			idx = calibrationBins - 1
		}
		bins[idx].Count++
		sums[idx] += o.HomeWinProbability
		if o.HomeWon {
			wins[idx]++
		}
	}

	for i := range bins {
		if bins[i].Count == 0 {
			continue
		}
		bins[i].Predicted = sums[i] / float64(bins[i].Count)
		bins[i].Observed = float64(wins[i]) / float64(bins[i].Count)
	}
	return bins
}

// calculateCalibrationError is the count-weighted mean gap between predicted
// and observed frequency per bin (expected calibration error)
func calculateCalibrationError(bins []CalibrationBin, total int) float64 {
	if total == 0 {
		return 0
	}
	ece := 0.0
	for _, b := range bins {
		if b.Count == 0 {
			continue
		}
		ece += math.Abs(b.Predicted-b.Observed) * float64(b.Count)
	}
	return ece / float64(total)
}

func clampProb(p float64) float64 {
	if p < logLossFloor {
		return logLossFloor
	}
	if p > 1-logLossFloor {
		return 1 - logLossFloor
	}
	return p
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	return mean / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
