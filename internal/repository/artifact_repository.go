package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/fantasy-edge/internal/database"
	"github.com/yourusername/fantasy-edge/internal/models"
)

// PostgresArtifactRepository implements ArtifactRepository for PostgreSQL.
// The registry tracks artifact metadata and on-disk location; the parameter
// payloads themselves live in the artifact files.
type PostgresArtifactRepository struct {
	db *database.DB
}

// NewPostgresArtifactRepository creates a new artifact registry repository
func NewPostgresArtifactRepository(db *database.DB) ArtifactRepository {
	return &PostgresArtifactRepository{db: db}
}

// Register records a newly trained artifact in the registry
func (r *PostgresArtifactRepository) Register(ctx context.Context, meta *models.ArtifactMetadata, path string) error {
	query := `
		INSERT INTO model_artifacts (id, model_type, version, schema_version, feature_count, accuracy,
		                             home_prediction_rate, training_samples, trained_at, checksum, path, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		meta.ID, meta.ModelType, meta.Version, meta.SchemaVersion, meta.FeatureCount, meta.Accuracy,
		meta.HomePredictionRate, meta.TrainingSamples, meta.TrainedAt, meta.Checksum, path, models.StateTrained,
	)
	if err != nil {
		return fmt.Errorf("failed to register artifact: %w", err)
	}

	return nil
}

// GetByVersion retrieves artifact metadata by model type and version
func (r *PostgresArtifactRepository) GetByVersion(ctx context.Context, modelType, version string) (*models.ArtifactMetadata, error) {
	query := `
		SELECT id, model_type, version, schema_version, feature_count, accuracy,
		       home_prediction_rate, training_samples, trained_at, checksum
		FROM model_artifacts
		WHERE model_type = $1 AND version = $2
	`

	meta := &models.ArtifactMetadata{}
	err := r.db.GetPool().QueryRow(ctx, query, modelType, version).Scan(
		&meta.ID, &meta.ModelType, &meta.Version, &meta.SchemaVersion, &meta.FeatureCount, &meta.Accuracy,
		&meta.HomePredictionRate, &meta.TrainingSamples, &meta.TrainedAt, &meta.Checksum,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}

	return meta, nil
}

// GetLatestByType retrieves the newest servable artifact for a model family
func (r *PostgresArtifactRepository) GetLatestByType(ctx context.Context, modelType string) (*models.ArtifactMetadata, error) {
	query := `
		SELECT id, model_type, version, schema_version, feature_count, accuracy,
		       home_prediction_rate, training_samples, trained_at, checksum
		FROM model_artifacts
		WHERE model_type = $1 AND state IN ('trained', 'loaded')
		ORDER BY trained_at DESC
		LIMIT 1
	`

	meta := &models.ArtifactMetadata{}
	err := r.db.GetPool().QueryRow(ctx, query, modelType).Scan(
		&meta.ID, &meta.ModelType, &meta.Version, &meta.SchemaVersion, &meta.FeatureCount, &meta.Accuracy,
		&meta.HomePredictionRate, &meta.TrainingSamples, &meta.TrainedAt, &meta.Checksum,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest artifact: %w", err)
	}

	return meta, nil
}

// MarkStale moves a superseded artifact out of serving rotation
func (r *PostgresArtifactRepository) MarkStale(ctx context.Context, modelType, version string) error {
	query := `UPDATE model_artifacts SET state = 'stale' WHERE model_type = $1 AND version = $2`

	tag, err := r.db.GetPool().Exec(ctx, query, modelType, version)
	if err != nil {
		return fmt.Errorf("failed to mark artifact stale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
