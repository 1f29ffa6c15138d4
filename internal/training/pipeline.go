package training

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/yourusername/fantasy-edge/internal/config"
	"github.com/yourusername/fantasy-edge/internal/features"
	"github.com/yourusername/fantasy-edge/internal/logger"
	"github.com/yourusername/fantasy-edge/internal/metrics"
	"github.com/yourusername/fantasy-edge/internal/models"
	"github.com/yourusername/fantasy-edge/internal/predictor"
)

// baseL2 is the starting regularization strength. Each bias-gate retry
// multiplies it by l2Escalation.
const (
	baseL2       = 1e-4
	l2Escalation = 10.0
)

// Pipeline trains every model family against a balanced dataset, enforces
// the bias gate with escalating regularization and publishes artifacts to
// the artifact directory.
type Pipeline struct {
	cfg     config.TrainingConfig
	builder *DatasetBuilder
	gate    BiasGate
	seed    int64
	tlog    *logger.TrainingLogger
}

// NewPipeline creates a training pipeline
func NewPipeline(cfg config.TrainingConfig, builder *DatasetBuilder, seed int64, tlog *logger.TrainingLogger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		builder: builder,
		gate:    NewBiasGate(cfg.BiasGateLow, cfg.BiasGateHigh),
		seed:    seed,
		tlog:    tlog,
	}
}

// Run builds datasets and trains all four families from completed games.
// Families that fail are logged and skipped; Run errors only when no family
// produced a servable artifact.
func (p *Pipeline) Run(ctx context.Context, games []*models.Game) ([]*models.ModelArtifact, error) {
	version := fmt.Sprintf("v%s", time.Now().UTC().Format("20060102-150405"))

	artifacts := make([]*models.ModelArtifact, 0, len(models.ModelFamilies))
	var errs []error
	for _, family := range models.ModelFamilies {
		ds, err := p.builder.Build(ctx, games, family, p.cfg.TrainFraction, p.cfg.ValidationFraction)
		if err != nil {
			p.tlog.LogTrainingError(family, err.Error())
			metrics.TrainingRunsTotal.WithLabelValues(family, "dataset_error").Inc()
			errs = append(errs, fmt.Errorf("%s: %w", family, err))
			continue
		}

		artifact, err := p.TrainFamily(ctx, family, version, ds)
		if err != nil {
			p.tlog.LogTrainingError(family, err.Error())
			errs = append(errs, fmt.Errorf("%s: %w", family, err))
			continue
		}

		if _, err := predictor.SaveArtifact(p.cfg.ArtifactDir, artifact); err != nil {
			p.tlog.LogTrainingError(family, err.Error())
			errs = append(errs, fmt.Errorf("%s: %w", family, err))
			continue
		}
		artifacts = append(artifacts, artifact)
	}

	if len(artifacts) == 0 {
		return nil, fmt.Errorf("training run produced no artifacts: %w", errors.Join(errs...))
	}
	return artifacts, nil
}

// TrainFamily trains one model family with up to MaxRetrainAttempts passes
// through the bias gate, each retry escalating L2 regularization. Gate
// failure on the final attempt is a hard error.
func (p *Pipeline) TrainFamily(ctx context.Context, modelType, version string, ds *SplitDataset) (*models.ModelArtifact, error) {
	if ds.Total() < p.cfg.MinSamples {
		metrics.TrainingRunsTotal.WithLabelValues(modelType, "insufficient_data").Inc()
		return nil, fmt.Errorf("%w: %d samples, minimum %d", models.ErrDataInsufficient, ds.Total(), p.cfg.MinSamples)
	}

	width, err := features.VariantLength(modelType)
	if err != nil {
		return nil, err
	}

	p.tlog.WithFields(logFields(modelType, ds)).Info("Starting model training")

	var gateErr error
	for attempt := 1; attempt <= p.cfg.MaxRetrainAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		l2 := baseL2 * math.Pow(l2Escalation, float64(attempt-1))
		model, err := predictor.New(modelType, width, l2, p.seed+int64(attempt))
		if err != nil {
			return nil, err
		}

		start := time.Now()
		if err := model.Train(ctx, ds.Train, ds.Validation); err != nil {
			metrics.TrainingRunsTotal.WithLabelValues(modelType, "train_error").Inc()
			return nil, err
		}
		metrics.TrainingDuration.WithLabelValues(modelType).Observe(time.Since(start).Seconds())

		// Gate and score on the test split. The validation split feeds
		// early stopping during Train, so it is not a clean sample of
		// the model's home-pick tendency.
		testEval, err := Evaluate(model, ds.Test)
		if err != nil {
			return nil, err
		}
		gateErr = p.gate.Check(testEval)
		p.tlog.LogBiasGate(modelType, testEval.HomePredictionRate, gateErr == nil, attempt)
		if gateErr != nil {
			metrics.RecordBiasGateFailure()
			metrics.TrainingRunsTotal.WithLabelValues(modelType, "gate_failed").Inc()
			continue
		}

		artifact, err := predictor.BuildArtifact(model, version, testEval.Accuracy, testEval.HomePredictionRate, ds.Train.Len())
		if err != nil {
			return nil, err
		}

		metrics.TrainingRunsTotal.WithLabelValues(modelType, "success").Inc()
		p.tlog.LogModelTrained(modelType, version, testEval.Accuracy, testEval.HomePredictionRate,
			ds.Train.Len(), time.Since(start).Seconds())
		return artifact, nil
	}

	return nil, fmt.Errorf("bias gate failed after %d attempts: %w", p.cfg.MaxRetrainAttempts, gateErr)
}
