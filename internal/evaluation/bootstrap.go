package evaluation

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// BootstrapConfig configures bootstrap resampling
type BootstrapConfig struct {
	Iterations      int
	ConfidenceLevel float64
	Seed            int64
}

// BootstrapResult represents the sampling distribution of the headline metrics
type BootstrapResult struct {
	Iterations           int                `json:"iterations"`
	MeanAccuracy         float64            `json:"mean_accuracy"`
	StdAccuracy          float64            `json:"std_accuracy"`
	MeanBrier            float64            `json:"mean_brier"`
	StdBrier             float64            `json:"std_brier"`
	AccuracyIntervals    map[string]float64 `json:"accuracy_intervals"`
	ProbabilityAboveFlip float64            `json:"probability_above_flip"`
}

// RunBootstrap estimates confidence intervals for accuracy and Brier score
// by resampling outcomes with replacement
func RunBootstrap(ctx context.Context, outcomes []Outcome, cfg BootstrapConfig) (BootstrapResult, error) {
	if len(outcomes) == 0 {
		return BootstrapResult{}, fmt.Errorf("no outcomes to resample")
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	accuracies := make([]float64, 0, cfg.Iterations)
	briers := make([]float64, 0, cfg.Iterations)
	sample := make([]Outcome, len(outcomes))

	for i := 0; i < cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return BootstrapResult{}, err
		}
		for j := range sample {
			sample[j] = outcomes[rng.Intn(len(outcomes))]
		}
		m := CalculateMetrics(sample, time.Time{}, time.Time{})
		accuracies = append(accuracies, m.Accuracy)
		briers = append(briers, m.BrierScore)
	}

	level := cfg.ConfidenceLevel
	if level <= 0 || level >= 1 {
		level = 0.95
	}
	alpha := (1 - level) / 2

	aboveFlip := 0
	for _, a := range accuracies {
		if a > 0.5 {
			aboveFlip++
		}
	}

	return BootstrapResult{
		Iterations:   cfg.Iterations,
		MeanAccuracy: average(accuracies),
		StdAccuracy:  stddev(accuracies),
		MeanBrier:    average(briers),
		StdBrier:     stddev(briers),
		AccuracyIntervals: map[string]float64{
			"low":  percentile(accuracies, alpha),
			"high": percentile(accuracies, 1-alpha),
		},
		ProbabilityAboveFlip: float64(aboveFlip) / float64(cfg.Iterations),
	}, nil
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	index := int(p * float64(len(sorted)))
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
