package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Predictor lifecycle states
const (
	StateUntrained = "untrained"
	StateTraining  = "training"
	StateTrained   = "trained"
	StateLoaded    = "loaded"
	StateStale     = "stale"
)

// Base model family identifiers
const (
	ModelNeuralNet       = "neural_net"
	ModelRandomForest    = "random_forest"
	ModelSequence        = "sequence"
	ModelGradientBoosted = "gradient_boosted"
)

// ModelFamilies lists every base predictor type in ensemble order
var ModelFamilies = []string{
	ModelNeuralNet,
	ModelRandomForest,
	ModelSequence,
	ModelGradientBoosted,
}

// ArtifactMetadata is the embedded metadata of a trained model artifact
type ArtifactMetadata struct {
	ID                 uuid.UUID `json:"id" validate:"required,uuid4"`
	ModelType          string    `json:"model_type" validate:"required"`
	Version            string    `json:"version" validate:"required"`
	SchemaVersion      string    `json:"schema_version" validate:"required"`
	FeatureCount       int       `json:"feature_count" validate:"gt=0"`
	Accuracy           float64   `json:"accuracy" validate:"gte=0,lte=1"`
	HomePredictionRate float64   `json:"home_prediction_rate" validate:"gte=0,lte=1"`
	TrainingSamples    int       `json:"training_samples" validate:"gt=0"`
	TrainedAt          time.Time `json:"trained_at" validate:"required"`
	Checksum           string    `json:"checksum" validate:"required"`
}

// ModelArtifact is an immutable trained model: metadata plus the opaque
// parameter payload each predictor family knows how to decode
type ModelArtifact struct {
	Metadata   ArtifactMetadata `json:"metadata"`
	Parameters json.RawMessage  `json:"parameters"`
	State      string           `json:"state"`
}

// IsServable reports whether the artifact can be loaded for inference
func (a *ModelArtifact) IsServable() bool {
	return a.State == StateTrained || a.State == StateLoaded
}

// MarkStale transitions a superseded artifact out of serving rotation.
// Stale artifacts are retained for rollback.
func (a *ModelArtifact) MarkStale() {
	a.State = StateStale
}
