// Package logger provides training-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// TrainingLogger provides dedicated logging for the model training pipeline.
type TrainingLogger struct {
	*logrus.Entry
}

// NewTrainingLogger creates a new training logger.
func NewTrainingLogger(baseLogger *logrus.Logger) *TrainingLogger {
	return &TrainingLogger{
		Entry: baseLogger.WithField("component", "training"),
	}
}

// LogDatasetBuilt logs dataset construction results.
func (tl *TrainingLogger) LogDatasetBuilt(totalGames, samples int, homeLabelRate float64, dropped int) {
	tl.WithFields(logrus.Fields{
		"total_games":     totalGames,
		"samples":         samples,
		"home_label_rate": homeLabelRate,
		"dropped":         dropped,
	}).Info("Training dataset built")
}

// LogEpoch logs per-epoch training progress.
func (tl *TrainingLogger) LogEpoch(modelType string, epoch int, trainLoss, valAccuracy float64) {
	tl.WithFields(logrus.Fields{
		"model_type":   modelType,
		"epoch":        epoch,
		"train_loss":   trainLoss,
		"val_accuracy": valAccuracy,
	}).Debug("Training epoch completed")
}

// LogModelTrained logs completion of a single model training run.
func (tl *TrainingLogger) LogModelTrained(modelType, version string, accuracy, homeRate float64, samples int, durationSec float64) {
	tl.WithFields(logrus.Fields{
		"model_type":           modelType,
		"version":              version,
		"accuracy":             accuracy,
		"home_prediction_rate": homeRate,
		"training_samples":     samples,
		"duration_seconds":     durationSec,
	}).Info("Model training completed")
}

// LogBiasGate logs the outcome of the post-training bias validation gate.
func (tl *TrainingLogger) LogBiasGate(modelType string, homeRate float64, passed bool, attempt int) {
	fields := logrus.Fields{
		"model_type":           modelType,
		"home_prediction_rate": homeRate,
		"attempt":              attempt,
	}
	if passed {
		tl.WithFields(fields).Info("Bias validation gate passed")
	} else {
		tl.WithFields(fields).Warn("Bias validation gate failed")
	}
}

// LogTrainingError logs a hard training failure.
func (tl *TrainingLogger) LogTrainingError(modelType string, errorReason string) {
	tl.WithFields(logrus.Fields{
		"model_type":   modelType,
		"error_reason": errorReason,
	}).Error("Model training failed")
}
