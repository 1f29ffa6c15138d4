// Package main provides the entry point for the model training pipeline.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/fantasy-edge/internal/config"
	"github.com/yourusername/fantasy-edge/internal/database"
	"github.com/yourusername/fantasy-edge/internal/logger"
	"github.com/yourusername/fantasy-edge/internal/repository"
	"github.com/yourusername/fantasy-edge/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "path to configuration file")
		seed       = flag.Int64("seed", 1, "random seed for reproducible training runs")
	)
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"sport_key": cfg.App.SportKey,
		"from":      cfg.Training.StartDate,
		"to":        cfg.Training.EndDate,
		"seed":      *seed,
	}).Info("Training run starting")

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

	svc := service.NewTrainingService(cfg.Training, cfg.App.SportKey, repos, *seed, appLog)

	artifacts, err := svc.Retrain(ctx)
	if err != nil {
		appLog.WithError(err).Fatal("Training run failed")
	}

	for _, artifact := range artifacts {
		appLog.WithFields(logrus.Fields{
			"model_type": artifact.Metadata.ModelType,
			"version":    artifact.Metadata.Version,
			"accuracy":   artifact.Metadata.Accuracy,
		}).Info("Artifact produced")
	}
	appLog.WithField("artifacts", len(artifacts)).Info("Training run complete")
}
