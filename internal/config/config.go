// Package config provides configuration management for the Fantasy Edge prediction engine.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	OddsFeed OddsFeedConfig `mapstructure:"odds_feed" validate:"required"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	Ensemble EnsembleConfig `mapstructure:"ensemble" validate:"required"`
	Training TrainingConfig `mapstructure:"training" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
	Health   HealthConfig   `mapstructure:"health"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	SportKey    string `mapstructure:"sport_key" validate:"required,sportkey"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// OddsFeedConfig represents the live betting-odds feed configuration
type OddsFeedConfig struct {
	BaseURL            string  `mapstructure:"base_url" validate:"required,url"`
	StreamURL          string  `mapstructure:"stream_url"`
	APIKey             string  `mapstructure:"api_key"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts      int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"gt=0"`
}

// WeatherConfig represents the optional weather feed configuration
type WeatherConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BaseURL        string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
}

// EnsembleConfig represents ensemble combiner configuration
type EnsembleConfig struct {
	Weights             map[string]float64 `mapstructure:"weights"`
	PerModelTimeoutMS   int                `mapstructure:"per_model_timeout_ms" validate:"required,gt=0"`
	NoPlayMargin        float64            `mapstructure:"no_play_margin" validate:"gte=0,lte=0.5"`
	DisagreementSpread  float64            `mapstructure:"disagreement_spread" validate:"gte=0,lte=1"`
	CacheTTLSeconds     int                `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize        int                `mapstructure:"cache_max_size" validate:"required,gt=0"`
	ConfidenceThreshold float64            `mapstructure:"confidence_threshold" validate:"gte=0,lte=1"`
}

// TrainingConfig represents training pipeline configuration
type TrainingConfig struct {
	ArtifactDir        string  `mapstructure:"artifact_dir" validate:"required"`
	MinSamples         int     `mapstructure:"min_samples" validate:"required,gte=100"`
	MinTeamGames       int     `mapstructure:"min_team_games" validate:"required,gt=0"`
	TrainFraction      float64 `mapstructure:"train_fraction" validate:"required,gt=0,lt=1"`
	ValidationFraction float64 `mapstructure:"validation_fraction" validate:"required,gt=0,lt=1"`
	BiasGateLow        float64 `mapstructure:"bias_gate_low" validate:"required,gte=0,lte=1"`
	BiasGateHigh       float64 `mapstructure:"bias_gate_high" validate:"required,gte=0,lte=1"`
	MaxRetrainAttempts int     `mapstructure:"max_retrain_attempts" validate:"required,gt=0"`
	RetrainSchedule    string  `mapstructure:"retrain_schedule"`
	StartDate          string  `mapstructure:"start_date" validate:"required,datetime"`
	EndDate            string  `mapstructure:"end_date" validate:"required,datetime"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health server configuration
type HealthConfig struct {
	Port string `mapstructure:"port"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// PerModelTimeout returns the per-model inference timeout budget
func (c *EnsembleConfig) PerModelTimeout() time.Duration {
	return time.Duration(c.PerModelTimeoutMS) * time.Millisecond
}

// ModelWeights returns the configured ensemble weights for a sport, falling
// back to flat 0.25 per family when no override exists
func (c *EnsembleConfig) ModelWeights(families []string) map[string]float64 {
	weights := make(map[string]float64, len(families))
	for _, f := range families {
		if w, ok := c.Weights[f]; ok && w > 0 {
			weights[f] = w
		} else {
			weights[f] = 1.0 / float64(len(families))
		}
	}
	return weights
}
