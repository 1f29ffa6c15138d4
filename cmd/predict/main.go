// Package main provides a one-shot prediction CLI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/fantasy-edge/internal/config"
	"github.com/yourusername/fantasy-edge/internal/database"
	"github.com/yourusername/fantasy-edge/internal/ensemble"
	"github.com/yourusername/fantasy-edge/internal/features"
	"github.com/yourusername/fantasy-edge/internal/logger"
	"github.com/yourusername/fantasy-edge/internal/models"
	"github.com/yourusername/fantasy-edge/internal/oddsfeed"
	"github.com/yourusername/fantasy-edge/internal/predictor"
	"github.com/yourusername/fantasy-edge/internal/repository"
	"github.com/yourusername/fantasy-edge/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "path to configuration file")
		matchupID  = flag.String("matchup", "", "matchup UUID to predict")
		upcoming   = flag.Int("upcoming", 0, "predict the next N upcoming matchups instead of one")
	)
	flag.Parse()

	if *matchupID == "" && *upcoming <= 0 {
		log.Fatalf("Either -matchup or -upcoming must be given")
	}

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	manager := predictor.NewManager(logger.NewComponentLogger(appLog, "models"))
	loaded, err := manager.ActivateLatest(cfg.Training.ArtifactDir)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to load model artifacts")
	}
	if loaded == 0 {
		appLog.Fatal("No servable model artifacts found; run training first")
	}
	appLog.WithField("models", loaded).Info("Model artifacts loaded")

	cache := ensemble.NewPredictionCache(
		time.Duration(cfg.Ensemble.CacheTTLSeconds)*time.Second,
		cfg.Ensemble.CacheMaxSize,
	)
	combiner := ensemble.NewCombiner(manager, cfg.Ensemble, cache, logger.NewComponentLogger(appLog, "ensemble"))

	var liveQuotes features.QuoteSource
	if cfg.OddsFeed.APIKey != "" {
		client := oddsfeed.NewClient(cfg.OddsFeed, logger.NewComponentLogger(appLog, "oddsfeed"))
		defer client.Close()
		liveQuotes = client
	}

	svc := service.NewPredictionService(repos, combiner, liveQuotes, cfg.Training, logger.NewComponentLogger(appLog, "prediction"))

	var results []*models.PredictionResult
	if *matchupID != "" {
		id, err := uuid.Parse(*matchupID)
		if err != nil {
			appLog.WithError(err).Fatal("Invalid matchup ID")
		}
		result, err := svc.Predict(ctx, id)
		if err != nil {
			appLog.WithError(err).Fatal("Prediction failed")
		}
		results = append(results, result)
	} else {
		results, err = svc.PredictUpcoming(ctx, *upcoming)
		if err != nil {
			appLog.WithError(err).Fatal("Prediction failed")
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, result := range results {
		if err := enc.Encode(result); err != nil {
			appLog.WithError(err).Fatal("Failed to encode result")
		}
		if result.DataQuality.Degraded() {
			appLog.WithFields(logrus.Fields{
				"matchup_id": result.MatchupID,
				"warnings":   result.DataQuality.Warnings,
			}).Warn("Prediction used degraded inputs")
		}
	}
}
