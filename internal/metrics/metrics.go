// Package metrics provides a centralized Prometheus metrics registry for the
// research tooling.
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
	SignalsGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stocklab",
		Name:      "signals_generated_total",
		Help:      "Total number of non-hold signals generated by strategy",
	}, []string{"strategy"})
	BarsIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stocklab",
		Name:      "bars_ingested_total",
		Help:      "Total number of daily bars ingested by source",
	}, []string{"source"})
	IngestionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stocklab",
		Name:      "ingestion_errors_total",
		Help:      "Total number of ingestion failures by source",
	}, []string{"source"})
)

// Histogram metrics
var (
	IngestionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stocklab",
		Name:      "ingestion_duration_seconds",
		Help:      "Duration of bar ingestion runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(SignalsGeneratedTotal)
		registry.MustRegister(BarsIngestedTotal)
		registry.MustRegister(IngestionErrorsTotal)
		registry.MustRegister(IngestionDuration)

		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestRunDuration)
		registry.MustRegister(BacktestTotalReturn)
	})
	return registry
}

// GetRegistry returns the global registry, initializing it if necessary.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns an HTTP handler serving the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSignals counts the non-hold signals emitted for a strategy run.
func RecordSignals(strategy string, count int) {
	if count > 0 {
		SignalsGeneratedTotal.WithLabelValues(strategy).Add(float64(count))
	}
}

// RecordIngestion records the outcome of one ingestion run.
func RecordIngestion(source string, bars int, seconds float64, err error) {
	if err != nil {
		IngestionErrorsTotal.WithLabelValues(source).Inc()
		return
	}
	BarsIngestedTotal.WithLabelValues(source).Add(float64(bars))
	IngestionDuration.Observe(seconds)
}
