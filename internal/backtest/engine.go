// Package backtest implements the backtesting engine: signal replay over a
// historical price series, order simulation, performance analysis, and
// orchestration of comparison and optimization runs.
package backtest

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/stocklab/internal/logger"
	"github.com/yourusername/stocklab/internal/metrics"
	"github.com/yourusername/stocklab/internal/models"
	"github.com/yourusername/stocklab/internal/strategy"
)

// Engine orchestrates backtesting runs over a strategy registry.
type Engine struct {
	registry *strategy.Registry
	logger   *logrus.Logger
	runLog   *logger.RunLogger
	workers  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds the worker pool used for optimization runs. Zero or
// negative means one worker per CPU.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// NewEngine creates a new backtesting engine.
func NewEngine(registry *strategy.Registry, log *logrus.Logger, opts ...Option) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("strategy registry is required")
	}
	if log == nil {
		log = logrus.New()
	}
	e := &Engine{registry: registry, logger: log, runLog: logger.NewRunLogger(log)}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Logger returns the engine logger
func (e *Engine) Logger() *logrus.Logger {
	return e.logger
}

// Registry returns the strategy registry
func (e *Engine) Registry() *strategy.Registry {
	return e.registry
}

// Run executes one strategy end-to-end over the price series: signal
// generation, trade simulation, and performance analysis. Caller-supplied
// params override the strategy's defaults by key.
func (e *Engine) Run(strategyID string, bars []models.Bar, params strategy.Params, initialCapital float64) (*Result, error) {
	start := time.Now()
	result, err := e.run(strategyID, bars, params, initialCapital)
	if err != nil {
		metrics.RecordBacktestRun(strategyID, "failure")
		return nil, err
	}
	metrics.RecordBacktestRun(strategyID, "success")
	metrics.ObserveRunDuration(strategyID, time.Since(start).Seconds())
	metrics.UpdateTotalReturn(strategyID, result.Metrics.TotalReturn)

	e.runLog.LogRunCompleted(strategyID, len(bars), result.Metrics.TradeCount,
		result.Metrics.TotalReturn, float64(time.Since(start).Microseconds())/1000)
	return result, nil
}

func (e *Engine) run(strategyID string, bars []models.Bar, params strategy.Params, initialCapital float64) (*Result, error) {
	strat, err := e.registry.Get(strategyID)
	if err != nil {
		return nil, fmt.Errorf("strategy %q: %w", strategyID, err)
	}

	signals, err := strat.GenerateSignals(bars, params)
	if err != nil {
		return nil, fmt.Errorf("signal generation failed for %q: %w", strategyID, err)
	}
	metrics.RecordSignals(strategyID, countActive(signals))

	orders, equity, err := Simulate(bars, signals, initialCapital)
	if err != nil {
		return nil, fmt.Errorf("simulation failed for %q: %w", strategyID, err)
	}

	return &Result{
		StrategyID:  strategyID,
		Params:      strategy.Merge(strat.Defaults(), params),
		Metrics:     Analyze(bars, equity, orders, initialCapital),
		Orders:      orders,
		EquityCurve: equity,
	}, nil
}

func countActive(signals []models.Signal) int {
	n := 0
	for _, s := range signals {
		if s != models.SignalHold {
			n++
		}
	}
	return n
}
