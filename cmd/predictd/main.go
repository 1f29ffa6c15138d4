// Package main provides the entry point for the prediction daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/fantasy-edge/internal/config"
	"github.com/yourusername/fantasy-edge/internal/database"
	"github.com/yourusername/fantasy-edge/internal/ensemble"
	"github.com/yourusername/fantasy-edge/internal/features"
	"github.com/yourusername/fantasy-edge/internal/health"
	"github.com/yourusername/fantasy-edge/internal/logger"
	"github.com/yourusername/fantasy-edge/internal/metrics"
	"github.com/yourusername/fantasy-edge/internal/oddsfeed"
	"github.com/yourusername/fantasy-edge/internal/predictor"
	"github.com/yourusername/fantasy-edge/internal/repository"
	"github.com/yourusername/fantasy-edge/internal/scheduler"
	"github.com/yourusername/fantasy-edge/internal/service"
	"github.com/yourusername/fantasy-edge/internal/weather"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Sync cadences for the background feed jobs
const (
	oddsSyncIntervalSeconds    = 300
	weatherSyncIntervalSeconds = 3600
	predictionSweepSeconds     = 900
	predictionSweepLimit       = 50
	streamSubscribeLimit       = 100
)

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "predictd",
	Short: "Run the matchup prediction daemon",
	Long:  `Serves ensemble win-probability predictions, keeps odds and weather data synced, and retrains models on schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"sport_key":   cfg.App.SportKey,
		"version":     Version,
	}).Info("Fantasy Edge prediction daemon starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	// Model layer
	manager := predictor.NewManager(logger.NewComponentLogger(appLog, "models"))
	loaded, err := manager.ActivateLatest(cfg.Training.ArtifactDir)
	if err != nil {
		appLog.WithError(err).Warn("Model artifact scan failed; daemon starts unready")
	}
	appLog.WithField("models", loaded).Info("Model artifacts loaded")

	cache := ensemble.NewPredictionCache(
		time.Duration(cfg.Ensemble.CacheTTLSeconds)*time.Second,
		cfg.Ensemble.CacheMaxSize,
	)
	combiner := ensemble.NewCombiner(manager, cfg.Ensemble, cache, logger.NewComponentLogger(appLog, "ensemble"))

	// Feed clients
	var (
		oddsClient *oddsfeed.Client
		liveQuotes features.QuoteSource
	)
	if cfg.OddsFeed.APIKey != "" {
		oddsClient = oddsfeed.NewClient(cfg.OddsFeed, logger.NewComponentLogger(appLog, "oddsfeed"))
		defer oddsClient.Close()
		liveQuotes = oddsClient
	}
	weatherClient := weather.NewClient(cfg.Weather, logger.NewComponentLogger(appLog, "weather"))

	// Services
	predictionSvc := service.NewPredictionService(repos, combiner, liveQuotes, cfg.Training, logger.NewComponentLogger(appLog, "prediction"))
	syncSvc := service.NewFeedSyncService(repos, oddsClient, weatherClient, logger.NewComponentLogger(appLog, "feedsync"))
	trainingSvc := service.NewTrainingService(cfg.Training, cfg.App.SportKey, repos, time.Now().UnixNano(), appLog)

	// Background jobs
	sched := scheduler.NewScheduler(logger.NewComponentLogger(appLog, "scheduler"))
	if cfg.Training.RetrainSchedule != "" {
		retrain := func(ctx context.Context) error {
			if _, err := trainingSvc.Retrain(ctx); err != nil {
				return err
			}
			reloaded, err := manager.ActivateLatest(cfg.Training.ArtifactDir)
			if err != nil {
				return fmt.Errorf("failed to reload artifacts: %w", err)
			}
			appLog.WithField("models", reloaded).Info("Models reloaded after retraining")
			return nil
		}
		if err := sched.ScheduleRetraining(cfg.Training.RetrainSchedule, retrain); err != nil {
			return fmt.Errorf("failed to schedule retraining: %w", err)
		}
	}
	if oddsClient != nil {
		if err := sched.ScheduleFeedSync("odds", oddsSyncIntervalSeconds, syncSvc.SyncOdds); err != nil {
			return fmt.Errorf("failed to schedule odds sync: %w", err)
		}
	}
	if weatherClient.Enabled() {
		if err := sched.ScheduleFeedSync("weather", weatherSyncIntervalSeconds, syncSvc.SyncWeather); err != nil {
			return fmt.Errorf("failed to schedule weather sync: %w", err)
		}
	}
	predictionSweep := func(ctx context.Context) error {
		results, err := predictionSvc.PredictUpcoming(ctx, predictionSweepLimit)
		if err != nil {
			return err
		}
		appLog.WithField("predictions", len(results)).Debug("Prediction sweep complete")
		return nil
	}
	if err := sched.ScheduleFeedSync("predictions", predictionSweepSeconds, predictionSweep); err != nil {
		return fmt.Errorf("failed to schedule prediction sweep: %w", err)
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Warn("Scheduler not started")
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Error("Scheduler shutdown failed")
		}
	}()

	// Live odds stream
	if cfg.OddsFeed.StreamURL != "" {
		stream := oddsfeed.NewStreamClient(cfg.OddsFeed.StreamURL, cfg.OddsFeed.APIKey, logger.NewComponentLogger(appLog, "stream"))
		stream.AddHandler(syncSvc.HandleStreamQuote)
		go func() {
			games, err := repos.Game.GetUpcoming(ctx, streamSubscribeLimit)
			if err != nil {
				appLog.WithError(err).Error("Stream subscription skipped; upcoming matchup lookup failed")
				return
			}
			ids := make([]uuid.UUID, 0, len(games))
			for _, g := range games {
				ids = append(ids, g.ID)
			}
			if err := stream.Run(ctx, ids); err != nil && ctx.Err() == nil {
				appLog.WithError(err).Error("Odds stream terminated")
			}
		}()
		defer func() {
			if err := stream.Close(); err != nil {
				appLog.WithError(err).Error("Stream shutdown failed")
			}
		}()
	}

	// Metrics endpoint
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			appLog.WithField("port", cfg.Metrics.Port).Info("Metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	// Health endpoints
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        cfg.Health.Port,
		Logger:      appLog,
		DB:          db,
		Models:      manager,
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}
	healthServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"models":    loaded,
		"streaming": cfg.OddsFeed.StreamURL != "",
		"weather":   weatherClient.Enabled(),
	}).Info("Prediction daemon running")

	<-ctx.Done()
	appLog.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Metrics server shutdown failed")
		}
	}
	if err := healthServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Health server shutdown failed")
	}

	appLog.Info("Prediction daemon shut down")
	return nil
}
