// Package metrics provides the centralized Prometheus metrics registry for
// the prediction engine.
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
	PredictionsComputedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pmu_edge",
		Name:      "predictions_computed_total",
		Help:      "Total number of race predictions computed",
	})
	PredictionCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pmu_edge",
		Name:      "prediction_cache_hits_total",
		Help:      "Total number of prediction cache hits",
	})
	ValueBetsFlaggedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pmu_edge",
		Name:      "value_bets_flagged_total",
		Help:      "Total number of value bets flagged",
	})
	RacesIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pmu_edge",
		Name:      "races_ingested_total",
		Help:      "Total number of races fetched and stored",
	})
	ResultsIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pmu_edge",
		Name:      "results_ingested_total",
		Help:      "Total number of race results fetched and stored",
	})
	FetchErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pmu_edge",
		Name:      "fetch_errors_total",
		Help:      "Total number of upstream fetch failures",
	}, []string{"endpoint"})
)

// Gauge metrics
var (
	LastAccuracyScore = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pmu_edge",
		Name:      "last_accuracy_score",
		Help:      "Accuracy score of the most recently evaluated prediction",
	})
	PendingEvaluations = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pmu_edge",
		Name:      "pending_evaluations",
		Help:      "Number of stored predictions awaiting accuracy evaluation",
	})
	DailyPlannedStake = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pmu_edge",
		Name:      "daily_planned_stake",
		Help:      "Total stake across the day's recommended bets",
	})
)

// Histogram metrics
var (
	PredictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pmu_edge",
		Name:      "prediction_duration_seconds",
		Help:      "Duration of full prediction pipeline runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	PMURequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pmu_edge",
		Name:      "pmu_request_duration_seconds",
		Help:      "Latency of PMU API requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
	IngestionBatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pmu_edge",
		Name:      "ingestion_batch_duration_seconds",
		Help:      "Duration of full-day ingestion batches in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PredictionsComputedTotal)
		registry.MustRegister(PredictionCacheHitsTotal)
		registry.MustRegister(ValueBetsFlaggedTotal)
		registry.MustRegister(RacesIngestedTotal)
		registry.MustRegister(ResultsIngestedTotal)
		registry.MustRegister(FetchErrorsTotal)

		// Register gauge metrics
		registry.MustRegister(LastAccuracyScore)
		registry.MustRegister(PendingEvaluations)
		registry.MustRegister(DailyPlannedStake)

		// Register histogram metrics
		registry.MustRegister(PredictionDuration)
		registry.MustRegister(PMURequestDuration)
		registry.MustRegister(IngestionBatchDuration)
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

// RecordPrediction records one completed prediction run.
func RecordPrediction(durationSeconds float64, cached bool) {
	if cached {
		PredictionCacheHitsTotal.Inc()
		return
	}
	PredictionsComputedTotal.Inc()
	PredictionDuration.Observe(durationSeconds)
}

// RecordValueBets records value bets flagged in one race.
func RecordValueBets(count int) {
	ValueBetsFlaggedTotal.Add(float64(count))
}

// RecordRaceIngested records one stored race.
func RecordRaceIngested() {
	RacesIngestedTotal.Inc()
}

// RecordResultIngested records one stored race result.
func RecordResultIngested() {
	ResultsIngestedTotal.Inc()
}

// RecordFetchError records an upstream fetch failure for an endpoint.
func RecordFetchError(endpoint string) {
	FetchErrorsTotal.WithLabelValues(endpoint).Inc()
}

// RecordPMURequest records the latency of one PMU API request.
func RecordPMURequest(endpoint string, durationSeconds float64) {
	PMURequestDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// UpdateAccuracy updates the last observed accuracy score gauge.
func UpdateAccuracy(score float64) {
	LastAccuracyScore.Set(score)
}

// UpdatePendingEvaluations updates the pending evaluations gauge.
func UpdatePendingEvaluations(count float64) {
	PendingEvaluations.Set(count)
}

// UpdateDailyPlannedStake updates the planned stake gauge.
func UpdateDailyPlannedStake(amount float64) {
	DailyPlannedStake.Set(amount)
}
