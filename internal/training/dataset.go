// Package training implements the offline pipeline that turns historical
// games into balanced, difference-featured datasets, trains every model
// family, enforces the post-training bias gate and publishes versioned
// artifacts.
package training

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fantasy-edge/internal/features"
	"github.com/yourusername/fantasy-edge/internal/logger"
	"github.com/yourusername/fantasy-edge/internal/models"
	"github.com/yourusername/fantasy-edge/internal/predictor"
)

// balanceTolerance bounds how far from an exact 50/50 label split the
// balanced dataset may drift
const balanceTolerance = 0.01

// SplitDataset holds the chronological train/validation/test partitions for
// one model variant.
type SplitDataset struct {
	Train      predictor.Dataset
	Validation predictor.Dataset
	Test       predictor.Dataset
}

// Total returns the combined sample count
func (s SplitDataset) Total() int {
	return s.Train.Len() + s.Validation.Len() + s.Test.Len()
}

// DatasetBuilder converts completed games into labeled samples per model
// variant: assemble features as of tip-off, fold home/away pairs into
// differences, undersample to a balanced label split, then cut
// chronologically.
type DatasetBuilder struct {
	assembler    *features.Assembler
	minTeamGames int
	seed         int64
	tlog         *logger.TrainingLogger
}

// NewDatasetBuilder creates a dataset builder. The seed fixes the
// undersampling draw so a rebuild from the same history is identical.
func NewDatasetBuilder(assembler *features.Assembler, minTeamGames int, seed int64, tlog *logger.TrainingLogger) *DatasetBuilder {
	if minTeamGames <= 0 {
		minTeamGames = 5
	}
	return &DatasetBuilder{assembler: assembler, minTeamGames: minTeamGames, seed: seed, tlog: tlog}
}

// Build produces the split dataset for one model variant from completed
// games. Games are processed oldest first so every sample's features predate
// its label.
func (b *DatasetBuilder) Build(ctx context.Context, games []*models.Game, modelType string, trainFrac, valFrac float64) (*SplitDataset, error) {
	ordered := make([]*models.Game, 0, len(games))
	for _, g := range games {
		if g.IsFinal() {
			ordered = append(ordered, g)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartTime.Before(ordered[j].StartTime)
	})

	samples := make([]*models.TrainingSample, 0, len(ordered))
	dropped := 0
	for _, game := range ordered {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		gf, err := b.assembler.Assemble(ctx, game)
		if err != nil {
			dropped++
			continue
		}
		if gf.Quality.HomeHistoryDepth < b.minTeamGames || gf.Quality.AwayHistoryDepth < b.minTeamGames {
			dropped++
			continue
		}

		vec, err := gf.VectorFor(modelType)
		if err != nil {
			return nil, err
		}

		label := models.LabelAwayWin
		if game.HomeWon() {
			label = models.LabelHomeWin
		}
		samples = append(samples, &models.TrainingSample{
			GameID:   game.ID,
			GameDate: game.StartTime,
			Features: features.DifferenceVector(vec, modelType),
			Label:    label,
		})
	}

	balanced := balance(samples, rand.New(rand.NewSource(b.seed)))
	if b.tlog != nil {
		b.tlog.LogDatasetBuilt(len(ordered), len(balanced), homeLabelRate(balanced), dropped)
	}

	split := split(balanced, trainFrac, valFrac)
	if err := checkBalance(balanced); err != nil {
		return nil, err
	}
	return split, nil
}

// balance undersamples the majority label to the minority count, preserving
// chronological order of the survivors.
func balance(samples []*models.TrainingSample, rng *rand.Rand) []*models.TrainingSample {
	var home, away []*models.TrainingSample
	for _, s := range samples {
		if s.IsHomeWin() {
			home = append(home, s)
		} else {
			away = append(away, s)
		}
	}

	target := len(home)
	if len(away) < target {
		target = len(away)
	}
	home = undersample(home, target, rng)
	away = undersample(away, target, rng)

	out := append(home, away...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].GameDate.Before(out[j].GameDate) })
	return out
}

// undersample keeps n samples drawn without replacement, order preserved
func undersample(samples []*models.TrainingSample, n int, rng *rand.Rand) []*models.TrainingSample {
	if len(samples) <= n {
		return samples
	}
	keep := make(map[int]bool, n)
	perm := rng.Perm(len(samples))
	for _, idx := range perm[:n] {
		keep[idx] = true
	}
	out := make([]*models.TrainingSample, 0, n)
	for i, s := range samples {
		if keep[i] {
			out = append(out, s)
		}
	}
	return out
}

func homeLabelRate(samples []*models.TrainingSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	home := 0
	for _, s := range samples {
		if s.IsHomeWin() {
			home++
		}
	}
	return float64(home) / float64(len(samples))
}

// checkBalance verifies the undersampled labels sit within tolerance of an
// even split
func checkBalance(samples []*models.TrainingSample) error {
	if len(samples) == 0 {
		return nil
	}
	rate := homeLabelRate(samples)
	if math.Abs(rate-0.5) > balanceTolerance {
		return fmt.Errorf("%w: balanced home label rate %.4f outside 0.5 ± %.2f",
			models.ErrDataInsufficient, rate, balanceTolerance)
	}
	return nil
}

// split cuts the chronologically ordered samples into train, validation and
// test partitions. The newest games land in the test set so evaluation never
// sees the past of its own training data.
func split(samples []*models.TrainingSample, trainFrac, valFrac float64) *SplitDataset {
	n := len(samples)
	trainEnd := int(float64(n) * trainFrac)
	valEnd := trainEnd + int(float64(n)*valFrac)
	if valEnd > n {
		valEnd = n
	}

	return &SplitDataset{
		Train:      toDataset(samples[:trainEnd]),
		Validation: toDataset(samples[trainEnd:valEnd]),
		Test:       toDataset(samples[valEnd:]),
	}
}

func toDataset(samples []*models.TrainingSample) predictor.Dataset {
	d := predictor.Dataset{
		X: make([][]float64, len(samples)),
		Y: make([]float64, len(samples)),
	}
	for i, s := range samples {
		d.X[i] = s.Features
		d.Y[i] = s.Label
	}
	return d
}

// logFields is a small helper for consistent dataset log context
func logFields(modelType string, s *SplitDataset) logrus.Fields {
	return logrus.Fields{
		"model_type": modelType,
		"train":      s.Train.Len(),
		"validation": s.Validation.Len(),
		"test":       s.Test.Len(),
	}
}
