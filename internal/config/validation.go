// Package config provides configuration management for the Fantasy Edge prediction engine.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("sportkey", validateSportKey)
	_ = v.RegisterValidation("datetime", validateDateTime)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateSportKey validates the configured sport key
func validateSportKey(fl validator.FieldLevel) bool {
	sport := fl.Field().String()
	switch sport {
	case "nba", "nfl", "mlb", "nhl":
		return true
	default:
		return false
	}
}

// validateDateTime validates datetime strings
func validateDateTime(fl validator.FieldLevel) bool {
	dateStr := fl.Field().String()
	_, err := time.Parse("2006-01-02", dateStr)
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	// Validate training date range
	startDate, err := time.Parse("2006-01-02", cfg.Training.StartDate)
	if err != nil {
		return fmt.Errorf("invalid training start_date format: %w", err)
	}

	endDate, err := time.Parse("2006-01-02", cfg.Training.EndDate)
	if err != nil {
		return fmt.Errorf("invalid training end_date format: %w", err)
	}

	if !startDate.Before(endDate) {
		return fmt.Errorf("training start_date must be before end_date")
	}

	// Bias gate bounds must form a window around 0.5
	if cfg.Training.BiasGateLow >= cfg.Training.BiasGateHigh {
		return fmt.Errorf("bias_gate_low must be below bias_gate_high")
	}
	if cfg.Training.BiasGateLow > 0.5 || cfg.Training.BiasGateHigh < 0.5 {
		return fmt.Errorf("bias gate window must contain 0.5")
	}

	// Train + validation fractions must leave room for a held-out test set
	if cfg.Training.TrainFraction+cfg.Training.ValidationFraction >= 1.0 {
		return fmt.Errorf("train_fraction plus validation_fraction must leave a test split")
	}

	// Configured ensemble weight overrides must sum to 1
	if len(cfg.Ensemble.Weights) > 0 {
		sum := 0.0
		for _, w := range cfg.Ensemble.Weights {
			if w < 0 {
				return fmt.Errorf("ensemble weights must be non-negative")
			}
			sum += w
		}
		if sum < 0.999 || sum > 1.001 {
			return fmt.Errorf("ensemble weights must sum to 1, got %.4f", sum)
		}
	}

	// Validate production environment requirements
	if cfg.IsProduction() {
		if cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}

	// Validate connection pool settings
	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "sportkey":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: nba, nfl, mlb, nhl\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
