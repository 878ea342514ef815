package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "crop_advisory"

// Metrics holds the Prometheus counters, histograms, and gauges for the advisory service.
type Metrics struct {
	// Weather provider metrics.
	GeocodeRequests  *prometheus.CounterVec   // labels: outcome={success,empty,error,skipped}
	GeocodeCache     *prometheus.CounterVec   // labels: result={hit,miss}
	ForecastRequests *prometheus.CounterVec   // labels: outcome={success,error,skipped}
	ProviderDuration *prometheus.HistogramVec // labels: endpoint={geocode,forecast}
	WeatherEnabled   prometheus.Gauge

	// Advisory and prediction metrics.
	AdvisoryDecisions *prometheus.CounterVec // labels: decision
	Predictions       *prometheus.CounterVec // labels: crop, outcome={success,error}
	PredictDuration   prometheus.Histogram

	// Event publishing metrics.
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all service metrics and registers them with reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.GeocodeRequests,
		m.GeocodeCache,
		m.ForecastRequests,
		m.ProviderDuration,
		m.WeatherEnabled,
		m.AdvisoryDecisions,
		m.Predictions,
		m.PredictDuration,
		m.EventsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result.",
		}, []string{"result"}),
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_requests_total",
			Help:      "Forecast API requests by outcome.",
		}, []string{"outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "OpenWeather request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		WeatherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "weather_enabled",
			Help:      "1 when an OpenWeather API key is configured, 0 otherwise.",
		}),
		AdvisoryDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisory_decisions_total",
			Help:      "Advisories built, by final decision.",
		}, []string{"decision"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction requests by crop and outcome.",
		}, []string{"crop", "outcome"}),
		PredictDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "predict_duration_seconds",
			Help:      "End-to-end duration of a prediction including the advisory.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Prediction events written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Prediction events that failed to publish.",
		}),
	}
}
