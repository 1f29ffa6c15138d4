// Package main provides the entry point for the historical evaluation CLI tool.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/fantasy-edge/internal/config"
	"github.com/yourusername/fantasy-edge/internal/database"
	"github.com/yourusername/fantasy-edge/internal/ensemble"
	"github.com/yourusername/fantasy-edge/internal/evaluation"
	"github.com/yourusername/fantasy-edge/internal/logger"
	"github.com/yourusername/fantasy-edge/internal/predictor"
	"github.com/yourusername/fantasy-edge/internal/repository"
	"github.com/yourusername/fantasy-edge/internal/service"
)

// report is the JSON document written at the end of a run
type report struct {
	Metrics     evaluation.Metrics           `json:"metrics"`
	WalkForward evaluation.WalkForwardResult `json:"walk_forward,omitempty"`
	Bootstrap   evaluation.BootstrapResult   `json:"bootstrap,omitempty"`
}

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		startDate  = flag.String("start-date", "", "Override start date (YYYY-MM-DD)")
		endDate    = flag.String("end-date", "", "Override end date (YYYY-MM-DD)")
		mode       = flag.String("mode", "all", "Evaluation mode: metrics, walk-forward, bootstrap, all")
		output     = flag.String("output", "./output/evaluation.json", "Output path for results")
		windowDays = flag.Int("window-days", 14, "Walk-forward window size in days")
		iterations = flag.Int("iterations", 1000, "Bootstrap iterations")
		seed       = flag.Int64("seed", 0, "Bootstrap seed, 0 for time-based")
	)
	flag.Parse()

	appLog := logrus.New()
	appLog.SetFormatter(&logrus.JSONFormatter{})

	cfg := loadConfigWithSecrets(*configPath, appLog)
	if *startDate != "" {
		cfg.Training.StartDate = *startDate
	}
	if *endDate != "" {
		cfg.Training.EndDate = *endDate
	}

	start, err := time.Parse("2006-01-02", cfg.Training.StartDate)
	if err != nil {
		appLog.Fatalf("Invalid start date: %v", err)
	}
	end, err := time.Parse("2006-01-02", cfg.Training.EndDate)
	if err != nil {
		appLog.Fatalf("Invalid end date: %v", err)
	}

	ctx := context.Background()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.Fatalf("Failed to initialize repositories: %v", err)
	}

	manager := predictor.NewManager(logger.NewComponentLogger(appLog, "models"))
	loaded, err := manager.ActivateLatest(cfg.Training.ArtifactDir)
	if err != nil {
		appLog.Fatalf("Failed to load model artifacts: %v", err)
	}
	if loaded == 0 {
		appLog.Fatal("No servable model artifacts found; run training first")
	}

	cache := ensemble.NewPredictionCache(
		time.Duration(cfg.Ensemble.CacheTTLSeconds)*time.Second,
		cfg.Ensemble.CacheMaxSize,
	)
	combiner := ensemble.NewCombiner(manager, cfg.Ensemble, cache, logger.NewComponentLogger(appLog, "ensemble"))
	predictionSvc := service.NewPredictionService(repos, combiner, nil, cfg.Training, logger.NewComponentLogger(appLog, "prediction"))

	games, err := repos.Game.GetCompletedBySport(ctx, cfg.App.SportKey, end)
	if err != nil {
		appLog.Fatalf("Failed to load completed matchups: %v", err)
	}
	inRange := games[:0]
	for _, g := range games {
		if !g.StartTime.Before(start) {
			inRange = append(inRange, g)
		}
	}

	appLog.WithFields(logrus.Fields{
		"matchups": len(inRange),
		"from":     cfg.Training.StartDate,
		"to":       cfg.Training.EndDate,
		"models":   loaded,
	}).Info("Starting evaluation")

	evaluator := evaluation.NewEvaluator(predictionSvc.PredictGame, logger.NewComponentLogger(appLog, "evaluation"))
	outcomes, err := evaluator.Evaluate(ctx, inRange)
	if err != nil {
		appLog.Fatalf("Evaluation failed: %v", err)
	}

	var rep report
	rep.Metrics = evaluation.CalculateMetrics(outcomes, start, end)

	if *mode == "walk-forward" || *mode == "all" {
		rep.WalkForward, err = evaluation.RunWalkForward(outcomes, evaluation.WalkForwardConfig{
			WindowDays:        *windowDays,
			StepDays:          *windowDays,
			MinGamesPerWindow: 3,
		})
		if err != nil {
			appLog.Fatalf("Walk-forward evaluation failed: %v", err)
		}
	}
	if *mode == "bootstrap" || *mode == "all" {
		rep.Bootstrap, err = evaluation.RunBootstrap(ctx, outcomes, evaluation.BootstrapConfig{
			Iterations:      *iterations,
			ConfidenceLevel: 0.95,
			Seed:            *seed,
		})
		if err != nil {
			appLog.Fatalf("Bootstrap evaluation failed: %v", err)
		}
	}

	if err := writeReport(*output, rep); err != nil {
		appLog.Fatalf("Failed to write report: %v", err)
	}

	appLog.WithFields(logrus.Fields{
		"accuracy":       rep.Metrics.Accuracy,
		"brier_score":    rep.Metrics.BrierScore,
		"home_pick_rate": rep.Metrics.HomePickRate,
		"output":         *output,
	}).Info("Evaluation complete")
}

func loadConfigWithSecrets(path string, appLog *logrus.Logger) *config.Config {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		appLog.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			appLog.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			appLog.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		appLog.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func writeReport(path string, rep report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
