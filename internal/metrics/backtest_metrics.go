// Package metrics defines backtesting-specific Prometheus metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stocklab",
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by strategy and status",
	}, []string{"strategy", "status"})
)

// Backtest histogram vectors
var (
	BacktestRunDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stocklab",
		Name:      "backtest_run_duration_seconds",
		Help:      "Duration of single backtest runs by strategy",
		Buckets:   prometheus.DefBuckets,
	}, []string{"strategy"})
)

// Backtest gauge vectors
var (
	BacktestTotalReturn = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "stocklab",
		Name:      "backtest_total_return_pct",
		Help:      "Total return percentage from the most recent run per strategy",
	}, []string{"strategy"})
)

// RecordBacktestRun records a backtest run event.
// status should be one of: "success", "failure"
func RecordBacktestRun(strategy, status string) {
	BacktestRunsTotal.WithLabelValues(strategy, status).Inc()
}

// ObserveRunDuration records the wall-clock duration of a run in seconds.
func ObserveRunDuration(strategy string, seconds float64) {
	BacktestRunDuration.WithLabelValues(strategy).Observe(seconds)
}

// UpdateTotalReturn updates the last observed total return for a strategy.
func UpdateTotalReturn(strategy string, pct float64) {
	BacktestTotalReturn.WithLabelValues(strategy).Set(pct)
}
