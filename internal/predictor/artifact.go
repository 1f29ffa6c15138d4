package predictor

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/fantasy-edge/internal/features"
	"github.com/yourusername/fantasy-edge/internal/models"
)

// BuildArtifact freezes a trained predictor into a versioned artifact.
// Accuracy and home rate come from held-out evaluation; the checksum covers
// the parameter payload so tampered or truncated files refuse to load.
func BuildArtifact(p Predictor, version string, accuracy, homeRate float64, trainingSamples int) (*models.ModelArtifact, error) {
	params, err := p.Parameters()
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(params)

	return &models.ModelArtifact{
		Metadata: models.ArtifactMetadata{
			ID:                 uuid.New(),
			ModelType:          p.ModelType(),
			Version:            version,
			SchemaVersion:      features.SchemaVersion,
			FeatureCount:       p.FeatureCount(),
			Accuracy:           accuracy,
			HomePredictionRate: homeRate,
			TrainingSamples:    trainingSamples,
			TrainedAt:          time.Now().UTC(),
			Checksum:           hex.EncodeToString(sum[:]),
		},
		Parameters: params,
		State:      models.StateTrained,
	}, nil
}

// LoadPredictor reconstructs a servable predictor from an artifact, verifying
// integrity and schema compatibility first.
func LoadPredictor(artifact *models.ModelArtifact) (Predictor, error) {
	if artifact == nil {
		return nil, fmt.Errorf("%w: nil artifact", models.ErrModelLoad)
	}
	if !artifact.IsServable() {
		return nil, fmt.Errorf("%w: artifact %s is %s", models.ErrModelLoad, artifact.Metadata.Version, artifact.State)
	}
	if err := VerifyChecksum(artifact); err != nil {
		return nil, err
	}
	if artifact.Metadata.SchemaVersion != features.SchemaVersion {
		return nil, fmt.Errorf("%w: artifact schema %s, engine schema %s",
			models.ErrSchemaMismatch, artifact.Metadata.SchemaVersion, features.SchemaVersion)
	}

	want, err := features.VariantLength(artifact.Metadata.ModelType)
	if err != nil {
		return nil, err
	}
	if artifact.Metadata.FeatureCount != want {
		return nil, fmt.Errorf("%w: artifact trained on %d features, schema expects %d",
			models.ErrSchemaMismatch, artifact.Metadata.FeatureCount, want)
	}

	p, err := New(artifact.Metadata.ModelType, artifact.Metadata.FeatureCount, 0, 0)
	if err != nil {
		return nil, err
	}
	if err := p.SetParameters(artifact.Parameters); err != nil {
		return nil, err
	}
	return p, nil
}

// VerifyChecksum recomputes the parameter digest against the recorded one
func VerifyChecksum(artifact *models.ModelArtifact) error {
	sum := sha256.Sum256(artifact.Parameters)
	if hex.EncodeToString(sum[:]) != artifact.Metadata.Checksum {
		return fmt.Errorf("%w: checksum mismatch for %s %s",
			models.ErrModelLoad, artifact.Metadata.ModelType, artifact.Metadata.Version)
	}
	return nil
}

// artifactFileName returns the on-disk name for an artifact
func artifactFileName(modelType, version string) string {
	return fmt.Sprintf("%s_%s.json", modelType, version)
}

// ArtifactPath returns the on-disk location of an artifact version
func ArtifactPath(dir, modelType, version string) string {
	return filepath.Join(dir, artifactFileName(modelType, version))
}

// SaveArtifact writes an artifact to the artifact directory, creating it if
// needed. The write goes through a temp file and rename so a crashed run
// never leaves a half-written artifact behind.
func SaveArtifact(dir string, artifact *models.ModelArtifact) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifact dir: %w", err)
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding artifact: %w", err)
	}

	path := filepath.Join(dir, artifactFileName(artifact.Metadata.ModelType, artifact.Metadata.Version))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("publishing artifact: %w", err)
	}
	return path, nil
}

// ReadArtifact loads and decodes one artifact file
func ReadArtifact(path string) (*models.ModelArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrModelLoad, err)
	}
	var artifact models.ModelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", models.ErrModelLoad, filepath.Base(path), err)
	}
	return &artifact, nil
}

// ListArtifacts returns every readable artifact in the directory, newest
// first
func ListArtifacts(dir string) ([]*models.ModelArtifact, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	artifacts := make([]*models.ModelArtifact, 0, len(entries))
	for _, path := range entries {
		artifact, err := ReadArtifact(path)
		if err != nil {
			continue // unreadable files are skipped, not fatal
		}
		artifacts = append(artifacts, artifact)
	}
	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Metadata.TrainedAt.After(artifacts[j].Metadata.TrainedAt)
	})
	return artifacts, nil
}
