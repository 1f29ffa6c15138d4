// Package metrics provides the centralized Prometheus metrics registry for the prediction engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fantasy_edge",
		Name:      "predictions_total",
		Help:      "Total number of ensemble predictions served",
	}, []string{"winner", "degraded"})
	ModelFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fantasy_edge",
		Name:      "model_failures_total",
		Help:      "Total number of base model inference failures or timeouts",
	}, []string{"model_type", "reason"})
	ModelLoadFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fantasy_edge",
		Name:      "model_load_failures_total",
		Help:      "Total number of artifact load or integrity failures",
	}, []string{"model_type"})
	BiasGateFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fantasy_edge",
		Name:      "bias_gate_failures_total",
		Help:      "Total number of post-training bias gate rejections",
	})
	TrainingRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fantasy_edge",
		Name:      "training_runs_total",
		Help:      "Total number of training runs by outcome",
	}, []string{"model_type", "outcome"})
	FeedDegradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fantasy_edge",
		Name:      "feed_degraded_total",
		Help:      "Total number of requests served with a synthetic feature group",
	}, []string{"feed"})
	FeedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fantasy_edge",
		Name:      "feed_requests_total",
		Help:      "Total number of external feed requests by outcome",
	}, []string{"feed", "outcome"})
)

// Gauge metrics
var (
	LoadedModels = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fantasy_edge",
		Name:      "loaded_models",
		Help:      "Number of base models currently loaded for serving",
	})
	FeatureCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fantasy_edge",
		Name:      "feature_cache_hit_ratio",
		Help:      "Hit ratio of the team-stat feature cache",
	})
	PredictionCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fantasy_edge",
		Name:      "prediction_cache_hit_ratio",
		Help:      "Hit ratio of the prediction result cache",
	})
	ActiveModelHomeRate = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fantasy_edge",
		Name:      "active_model_home_rate",
		Help:      "Home-prediction rate recorded in the active artifact metadata",
	}, []string{"model_type"})
)

// Histogram metrics
var (
	PredictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fantasy_edge",
		Name:      "prediction_latency_seconds",
		Help:      "End-to-end latency of ensemble predictions in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	ModelInferenceLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fantasy_edge",
		Name:      "model_inference_latency_seconds",
		Help:      "Latency of single base model inference in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5},
	}, []string{"model_type"})
	FeatureExtractionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fantasy_edge",
		Name:      "feature_extraction_latency_seconds",
		Help:      "Latency of full feature assembly in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	TrainingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fantasy_edge",
		Name:      "training_duration_seconds",
		Help:      "Duration of model training runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	}, []string{"model_type"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(ModelFailuresTotal)
		registry.MustRegister(ModelLoadFailuresTotal)
		registry.MustRegister(BiasGateFailuresTotal)
		registry.MustRegister(TrainingRunsTotal)
		registry.MustRegister(FeedDegradedTotal)
		registry.MustRegister(FeedRequestsTotal)

		// Register gauge metrics
		registry.MustRegister(LoadedModels)
		registry.MustRegister(FeatureCacheHitRatio)
		registry.MustRegister(PredictionCacheHitRatio)
		registry.MustRegister(ActiveModelHomeRate)

		// Register histogram metrics
		registry.MustRegister(PredictionLatency)
		registry.MustRegister(ModelInferenceLatency)
		registry.MustRegister(FeatureExtractionLatency)
		registry.MustRegister(TrainingDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPrediction records a served prediction.
func RecordPrediction(winner string, degraded bool, latencySeconds float64) {
	flag := "false"
	if degraded {
		flag = "true"
	}
	PredictionsTotal.WithLabelValues(winner, flag).Inc()
	PredictionLatency.Observe(latencySeconds)
}

// RecordModelFailure records a base model inference failure.
func RecordModelFailure(modelType, reason string) {
	ModelFailuresTotal.WithLabelValues(modelType, reason).Inc()
}

// RecordBiasGateFailure records a bias gate rejection.
func RecordBiasGateFailure() {
	BiasGateFailuresTotal.Inc()
}
