package models

import "errors"

// Custom errors
var (
	// ErrDataInsufficient indicates too little history to compute reliable features
	ErrDataInsufficient = errors.New("insufficient historical data")

	// ErrFeedUnavailable indicates an external odds/weather feed is unreachable
	ErrFeedUnavailable = errors.New("external feed unavailable")

	// ErrModelLoad indicates a model artifact failed schema or integrity validation
	ErrModelLoad = errors.New("model artifact failed to load")

	// ErrBiasGateFailed indicates the post-training home-prediction-rate check failed
	ErrBiasGateFailed = errors.New("bias validation gate failed")

	// ErrNoModelsAvailable indicates zero base models are loaded for serving
	ErrNoModelsAvailable = errors.New("no base models available")

	// ErrSchemaMismatch indicates a feature vector does not match the model schema
	ErrSchemaMismatch = errors.New("feature schema mismatch")

	// ErrFeatureGroupMissing indicates a required feature group is entirely absent
	ErrFeatureGroupMissing = errors.New("required feature group missing")

	// ErrNotFound indicates a record was not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates a duplicate key violation
	ErrDuplicateKey = errors.New("duplicate key violation")
)
