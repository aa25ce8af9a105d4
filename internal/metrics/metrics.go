// Package metrics provides the Prometheus metrics registry for the race dynamics service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "race_dynamics"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Total number of race predictions served",
	}, []string{"pace", "source"})
	PredictionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_errors_total",
		Help:      "Total number of failed race predictions",
	}, []string{"reason"})
	CacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Prediction cache lookups by result",
	}, []string{"backend", "result"})
	CacheInvalidationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Prediction cache entries removed by scope",
	}, []string{"scope"})
	CourseLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "course_lookups_total",
		Help:      "Course characteristics lookups by source",
	}, []string{"source"})
	WarmRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "warm_runs_total",
		Help:      "Scheduled cache warm runs by outcome",
	}, []string{"status"})
)

// Gauge metrics
var (
	CacheHitRatio = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_hit_ratio",
		Help:      "Prediction cache hit ratio",
	}, []string{"backend"})
	CacheItems = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_items",
		Help:      "Number of cached predictions",
	}, []string{"backend"})
	LastWarmTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_warm_timestamp_seconds",
		Help:      "Unix time of the last completed warm run",
	})
)

// Histogram metrics
var (
	PredictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_duration_seconds",
		Help:      "Duration of uncached race predictions in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})
	FieldSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "field_size",
		Help:      "Number of runners per predicted race",
		Buckets:   []float64{4, 6, 8, 10, 12, 14, 16, 18},
	})
	CourseAPILatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "course_api_latency_seconds",
		Help:      "Latency of course characteristics API calls in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionErrorsTotal)
		registry.MustRegister(CacheRequestsTotal)
		registry.MustRegister(CacheInvalidationsTotal)
		registry.MustRegister(CourseLookupsTotal)
		registry.MustRegister(WarmRunsTotal)

		registry.MustRegister(CacheHitRatio)
		registry.MustRegister(CacheItems)
		registry.MustRegister(LastWarmTimestamp)

		registry.MustRegister(PredictionDuration)
		registry.MustRegister(FieldSize)
		registry.MustRegister(CourseAPILatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPrediction records a served prediction. Source is "cache" or "engine".
func RecordPrediction(pace, source string, runners int, durationSeconds float64) {
	PredictionsTotal.WithLabelValues(pace, source).Inc()
	if source == "engine" {
		PredictionDuration.Observe(durationSeconds)
		FieldSize.Observe(float64(runners))
	}
}

// RecordPredictionError records a failed prediction.
func RecordPredictionError(reason string) {
	PredictionErrorsTotal.WithLabelValues(reason).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(backend string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheRequestsTotal.WithLabelValues(backend, result).Inc()
}

// UpdateCacheStats updates the cache gauges.
func UpdateCacheStats(backend string, ratio float64, items int) {
	CacheHitRatio.WithLabelValues(backend).Set(ratio)
	CacheItems.WithLabelValues(backend).Set(float64(items))
}

// RecordInvalidation records removed cache entries.
func RecordInvalidation(scope string, removed int) {
	CacheInvalidationsTotal.WithLabelValues(scope).Add(float64(removed))
}

// RecordCourseLookup records where course characteristics came from.
func RecordCourseLookup(source string) {
	CourseLookupsTotal.WithLabelValues(source).Inc()
}

// RecordCourseAPICall records the latency of a course API call.
func RecordCourseAPICall(durationSeconds float64) {
	CourseAPILatency.Observe(durationSeconds)
}

// RecordWarmRun records a completed warm run.
func RecordWarmRun(failed int, finishedUnix float64) {
	status := "success"
	if failed > 0 {
		status = "partial"
	}
	WarmRunsTotal.WithLabelValues(status).Inc()
	LastWarmTimestamp.Set(finishedUnix)
}
