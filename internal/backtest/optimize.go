package backtest

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/stocklab/internal/models"
	"github.com/yourusername/stocklab/internal/strategy"
)

// GridAxis is one dimension of a parameter grid: a parameter name and its
// candidate values, tried in order.
type GridAxis struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Grid is an ordered parameter grid. The first axis varies slowest during
// enumeration and the last varies fastest, so a fixed grid always enumerates
// in the same order.
type Grid []GridAxis

// Combinations enumerates the Cartesian product of the grid's axes. An empty
// grid yields a single empty parameter set.
func (g Grid) Combinations() []strategy.Params {
	combos := []strategy.Params{{}}
	for _, axis := range g {
		next := make([]strategy.Params, 0, len(combos)*len(axis.Values))
		for _, combo := range combos {
			for _, value := range axis.Values {
				expanded := make(strategy.Params, len(combo)+1)
				for k, v := range combo {
					expanded[k] = v
				}
				expanded[axis.Name] = value
				next = append(next, expanded)
			}
		}
		combos = next
	}
	return combos
}

// Optimization holds the outcome of a grid search.
type Optimization struct {
	StrategyID      string             `json:"strategy_id"`
	BestParams      strategy.Params    `json:"best_params"`
	BestMetrics     PerformanceMetrics `json:"best_metrics"`
	BestTotalReturn float64            `json:"best_total_return"`
	Combinations    int                `json:"combinations"`
}

// Optimize grid-searches a strategy's parameter space for the combination
// maximizing total return, running a full backtest per combination.
// Combinations are independent side-effect-free runs, so they execute across
// a bounded worker pool; results are collected by combination index and ties
// resolve to the first combination in enumeration order, keeping the outcome
// deterministic for a fixed grid. Any failed combination aborts the whole
// call.
func (e *Engine) Optimize(strategyID string, bars []models.Bar, grid Grid, initialCapital float64) (*Optimization, error) {
	if _, err := e.registry.Get(strategyID); err != nil {
		return nil, fmt.Errorf("strategy %q: %w", strategyID, err)
	}

	combos := grid.Combinations()
	e.runLog.WithFields(logrus.Fields{
		"strategy":     strategyID,
		"combinations": len(combos),
	}).Info("Starting parameter optimization")

	results := make([]*Result, len(combos))
	errs := make([]error, len(combos))

	workers := e.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(combos) {
		workers = len(combos)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = e.Run(strategyID, bars, combos[i], initialCapital)
			}
		}()
	}
	for i := range combos {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("combination %d %v: %w", i, combos[i], err)
		}
	}

	best := 0
	for i := 1; i < len(results); i++ {
		if results[i].Metrics.TotalReturn > results[best].Metrics.TotalReturn {
			best = i
		}
	}

	e.runLog.LogOptimization(strategyID, len(combos), results[best].Metrics.TotalReturn)

	return &Optimization{
		StrategyID:      strategyID,
		BestParams:      combos[best],
		BestMetrics:     results[best].Metrics,
		BestTotalReturn: results[best].Metrics.TotalReturn,
		Combinations:    len(combos),
	}, nil
}
