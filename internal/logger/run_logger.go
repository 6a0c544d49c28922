// Package logger provides backtest-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// RunLogger provides dedicated logging for backtest run lifecycles.
type RunLogger struct {
	*logrus.Entry
}

// NewRunLogger creates a new backtest run logger.
func NewRunLogger(baseLogger *logrus.Logger) *RunLogger {
	return &RunLogger{
		Entry: baseLogger.WithField("component", "backtest"),
	}
}

// LogRunCompleted logs the outcome of one backtest run.
func (rl *RunLogger) LogRunCompleted(strategyID string, bars, trades int, totalReturnPct float64, durationMs float64) {
	rl.WithFields(logrus.Fields{
		"strategy_id":      strategyID,
		"bars":             bars,
		"trades":           trades,
		"total_return_pct": totalReturnPct,
		"run_duration_ms":  durationMs,
	}).Info("Backtest run completed")
}

// LogOptimization logs the outcome of a parameter grid search.
func (rl *RunLogger) LogOptimization(strategyID string, combinations int, bestReturnPct float64) {
	rl.WithFields(logrus.Fields{
		"strategy_id":     strategyID,
		"combinations":    combinations,
		"best_return_pct": bestReturnPct,
	}).Info("Parameter optimization completed")
}

// LogIngestion logs a bar ingestion batch.
func (rl *RunLogger) LogIngestion(source, symbol string, barsStored, barsDropped int, durationMs float64) {
	rl.WithFields(logrus.Fields{
		"source":             source,
		"symbol":             symbol,
		"bars_stored":        barsStored,
		"bars_dropped":       barsDropped,
		"ingest_duration_ms": durationMs,
	}).Info("Bar ingestion completed")
}
