package predictor

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fantasy-edge/internal/metrics"
	"github.com/yourusername/fantasy-edge/internal/models"
)

// loadedModel pairs a servable predictor with its artifact metadata
type loadedModel struct {
	predictor Predictor
	metadata  models.ArtifactMetadata
}

// Manager owns the active predictor per model family and hot-swaps them under
// a read lock so in-flight predictions never observe a half-loaded model.
// A version that fails to load is excluded for the life of the process; it
// never becomes active even if retried.
type Manager struct {
	mu     sync.RWMutex
	active map[string]*loadedModel
	failed map[string]bool // modelType:version that failed to load
	logger *logrus.Entry
}

// NewManager creates an empty model manager
func NewManager(logger *logrus.Entry) *Manager {
	return &Manager{
		active: make(map[string]*loadedModel),
		failed: make(map[string]bool),
		logger: logger,
	}
}

func failureKey(modelType, version string) string {
	return modelType + ":" + version
}

// Activate loads an artifact and swaps it in as the active model for its
// family. The previous model, if any, is simply replaced; its artifact stays
// on disk for rollback.
func (m *Manager) Activate(artifact *models.ModelArtifact) error {
	key := failureKey(artifact.Metadata.ModelType, artifact.Metadata.Version)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failed[key] {
		return fmt.Errorf("%w: version %s previously failed to load", models.ErrModelLoad, artifact.Metadata.Version)
	}

	p, err := LoadPredictor(artifact)
	if err != nil {
		m.failed[key] = true
		metrics.ModelLoadFailuresTotal.WithLabelValues(artifact.Metadata.ModelType).Inc()
		m.logger.WithError(err).WithFields(logrus.Fields{
			"model_type": artifact.Metadata.ModelType,
			"version":    artifact.Metadata.Version,
		}).Error("Model artifact failed to load, excluding version for this process")
		return err
	}

	m.active[artifact.Metadata.ModelType] = &loadedModel{predictor: p, metadata: artifact.Metadata}
	metrics.LoadedModels.Set(float64(len(m.active)))
	metrics.ActiveModelHomeRate.WithLabelValues(artifact.Metadata.ModelType).Set(artifact.Metadata.HomePredictionRate)

	m.logger.WithFields(logrus.Fields{
		"model_type": artifact.Metadata.ModelType,
		"version":    artifact.Metadata.Version,
		"accuracy":   artifact.Metadata.Accuracy,
	}).Info("Model activated")
	return nil
}

// ActivateLatest loads the newest servable artifact per family from a
// directory, skipping versions that fail. It returns the number of families
// activated.
func (m *Manager) ActivateLatest(dir string) (int, error) {
	artifacts, err := ListArtifacts(dir)
	if err != nil {
		return 0, err
	}

	activated := 0
	seen := make(map[string]bool)
	for _, artifact := range artifacts {
		family := artifact.Metadata.ModelType
		if seen[family] {
			continue
		}
		if err := m.Activate(artifact); err != nil {
			// Fall through to the next-newest version of this family
			continue
		}
		seen[family] = true
		activated++
	}

	if activated == 0 {
		return 0, fmt.Errorf("%w: no servable artifacts in %s", models.ErrNoModelsAvailable, dir)
	}
	return activated, nil
}

// Get returns the active predictor for a model family
func (m *Manager) Get(modelType string) (Predictor, models.ArtifactMetadata, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lm, ok := m.active[modelType]
	if !ok {
		return nil, models.ArtifactMetadata{}, false
	}
	return lm.predictor, lm.metadata, true
}

// ActiveFamilies returns the model families currently loaded, in canonical
// ensemble order.
func (m *Manager) ActiveFamilies() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.active))
	for _, family := range models.ModelFamilies {
		if _, ok := m.active[family]; ok {
			out = append(out, family)
		}
	}
	return out
}

// Deactivate drops a family from serving, used when an active model must be
// pulled without a replacement.
func (m *Manager) Deactivate(modelType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[modelType]; ok {
		delete(m.active, modelType)
		metrics.LoadedModels.Set(float64(len(m.active)))
		m.logger.WithField("model_type", modelType).Warn("Model deactivated")
	}
}

// Version returns the active version string for a family, or "" when none is
// loaded. The composite across families identifies the serving ensemble.
func (m *Manager) Version(modelType string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if lm, ok := m.active[modelType]; ok {
		return lm.metadata.Version
	}
	return ""
}
