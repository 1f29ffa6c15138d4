package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "fantasy-edge",
			Environment: "development",
			LogLevel:    "info",
			SportKey:    "nba",
		},
		Database: DatabaseConfig{
			Host:               "localhost",
			Port:               5432,
			Name:               "fantasy_edge",
			User:               "app",
			Password:           "secret",
			SSLMode:            "disable",
			MaxConnections:     10,
			MaxIdleConnections: 5,
		},
		OddsFeed: OddsFeedConfig{
			BaseURL:            "https://odds.example.com",
			TimeoutSeconds:     10,
			RetryAttempts:      3,
			RateLimitPerSecond: 5,
		},
		Ensemble: EnsembleConfig{
			PerModelTimeoutMS:  250,
			NoPlayMargin:       0.03,
			DisagreementSpread: 0.15,
			CacheTTLSeconds:    300,
			CacheMaxSize:       1000,
		},
		Training: TrainingConfig{
			ArtifactDir:        "/tmp/artifacts",
			MinSamples:         100,
			MinTeamGames:       5,
			TrainFraction:      0.7,
			ValidationFraction: 0.15,
			BiasGateLow:        0.45,
			BiasGateHigh:       0.55,
			MaxRetrainAttempts: 3,
			StartDate:          "2022-10-01",
			EndDate:            "2024-06-30",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

func TestValidateValidConfig(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Validate(cfg))
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "qa"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsBadSportKey(t *testing.T) {
	cfg := validConfig()
	cfg.App.SportKey = "cricket"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsInvertedBiasGate(t *testing.T) {
	cfg := validConfig()
	cfg.Training.BiasGateLow = 0.56
	cfg.Training.BiasGateHigh = 0.55
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsGateWindowOffCenter(t *testing.T) {
	cfg := validConfig()
	cfg.Training.BiasGateLow = 0.55
	cfg.Training.BiasGateHigh = 0.65
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsWeightsNotSummingToOne(t *testing.T) {
	cfg := validConfig()
	cfg.Ensemble.Weights = map[string]float64{
		"neural_net":       0.5,
		"random_forest":    0.3,
		"sequence":         0.1,
		"gradient_boosted": 0.3,
	}
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsSplitWithoutTestSet(t *testing.T) {
	cfg := validConfig()
	cfg.Training.TrainFraction = 0.8
	cfg.Training.ValidationFraction = 0.2
	assert.Error(t, Validate(cfg))
}

func TestValidateProductionRequiresSSL(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "production"
	cfg.Database.SSLMode = "disable"
	assert.Error(t, Validate(cfg))

	cfg.Database.SSLMode = "require"
	assert.NoError(t, Validate(cfg))
}

func TestModelWeightsDefaultFlat(t *testing.T) {
	cfg := validConfig()
	families := []string{"neural_net", "random_forest", "sequence", "gradient_boosted"}
	weights := cfg.Ensemble.ModelWeights(families)
	require.Len(t, weights, 4)
	for _, f := range families {
		assert.InDelta(t, 0.25, weights[f], 1e-9)
	}
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  name: fantasy-edge
  environment: development
  log_level: ${FE_TEST_LOG_LEVEL}
  sport_key: nba
database:
  host: localhost
  port: 5432
  name: fantasy_edge
  user: app
  password: secret
  ssl_mode: disable
  max_connections: 10
  max_idle_connections: 5
odds_feed:
  base_url: https://odds.example.com
  timeout_seconds: 10
  rate_limit_per_second: 5
ensemble:
  per_model_timeout_ms: 250
  cache_ttl_seconds: 300
  cache_max_size: 1000
training:
  artifact_dir: /tmp/artifacts
  min_samples: 100
  min_team_games: 5
  train_fraction: 0.7
  validation_fraction: 0.15
  bias_gate_low: 0.45
  bias_gate_high: 0.55
  max_retrain_attempts: 3
  start_date: "2022-10-01"
  end_date: "2024-06-30"
metrics:
  enabled: true
  port: 9090
  path: /metrics
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("FE_TEST_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "nba", cfg.App.SportKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadWithDefaultsNoFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Ensemble.PerModelTimeoutMS)
	assert.Equal(t, 100, cfg.Training.MinSamples)
	assert.InDelta(t, 0.45, cfg.Training.BiasGateLow, 1e-9)
}
