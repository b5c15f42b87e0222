// Package metrics exposes the Prometheus instruments of the prediction
// service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinegenre_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinegenre_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinegenre_api_active_requests",
			Help: "Number of requests currently being served",
		},
	)

	// Predictions
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinegenre_predictions_total",
			Help: "Total number of predictions by predicted group",
		},
		[]string{"group"},
	)

	PredictionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinegenre_prediction_errors_total",
			Help: "Total number of rejected or failed predictions",
		},
		[]string{"reason"}, // invalid_input, model_unavailable, internal
	)

	PredictionConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinegenre_prediction_confidence_percent",
			Help:    "Confidence of the top prediction in percent",
			Buckets: []float64{20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	ModelInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinegenre_model_info",
			Help: "Set to 1 for the loaded champion model",
		},
		[]string{"model", "variant"},
	)

	// Translation
	TranslationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinegenre_translation_duration_seconds",
			Help:    "Duration of translation calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	TranslationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinegenre_translation_failures_total",
			Help: "Total number of failed translation calls",
		},
		[]string{"provider"},
	)

	TranslationBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinegenre_translation_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"provider"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordPrediction records a successful prediction.
func RecordPrediction(group string, confidence float64) {
	PredictionsTotal.WithLabelValues(group).Inc()
	PredictionConfidence.Observe(confidence)
}

// RecordPredictionError records a failed prediction by reason.
func RecordPredictionError(reason string) {
	PredictionErrors.WithLabelValues(reason).Inc()
}

// SetModel marks model as the loaded champion.
func SetModel(model, variant string) {
	ModelInfo.Reset()
	ModelInfo.WithLabelValues(model, variant).Set(1)
}

// RecordTranslation records one translation call.
func RecordTranslation(provider string, duration time.Duration, err error) {
	TranslationDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if err != nil {
		TranslationFailures.WithLabelValues(provider).Inc()
	}
}

// SetBreakerState records the circuit breaker state of provider.
func SetBreakerState(provider string, state int) {
	TranslationBreakerState.WithLabelValues(provider).Set(float64(state))
}
