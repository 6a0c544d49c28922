package backtest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stocklab/internal/models"
	"github.com/yourusername/stocklab/internal/strategy"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	engine, err := NewEngine(strategy.DefaultRegistry(), logger, WithWorkers(2))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return engine
}

// flatTestBars builds n identical bars
func flatTestBars(n int, price float64) []models.Bar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return testBars(closes...)
}

// TestRunEmitsCompletionLog tests that a successful run logs through the
// backtest run logger
func TestRunEmitsCompletionLog(t *testing.T) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	engine, err := NewEngine(strategy.DefaultRegistry(), log)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := engine.Run("ma", flatTestBars(30, 100), nil, 100000); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %v: %s", err, buf.String())
	}
	if entry["component"] != "backtest" {
		t.Errorf("expected component 'backtest', got %v", entry["component"])
	}
	if entry["strategy_id"] != "ma" {
		t.Errorf("expected strategy_id 'ma', got %v", entry["strategy_id"])
	}
	if entry["bars"] != float64(30) {
		t.Errorf("expected 30 bars logged, got %v", entry["bars"])
	}
}

// TestNewEngineRequiresRegistry tests constructor validation
func TestNewEngineRequiresRegistry(t *testing.T) {
	if _, err := NewEngine(nil, nil); err == nil {
		t.Error("expected error for nil registry")
	}
}

// TestRunUnknownStrategy tests that an unregistered id fails the run
func TestRunUnknownStrategy(t *testing.T) {
	engine := testEngine(t)

	_, err := engine.Run("momentum", flatTestBars(30, 100), nil, 100000)
	if !errors.Is(err, models.ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

// TestRunFlatSeries tests a full run over constant data: no trades, zeroed risk stats
func TestRunFlatSeries(t *testing.T) {
	engine := testEngine(t)

	result, err := engine.Run("ma", flatTestBars(30, 100), nil, 100000)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(result.Orders) != 0 {
		t.Errorf("expected no orders, got %d", len(result.Orders))
	}
	if result.Metrics.TotalReturn != 0 {
		t.Errorf("expected total return 0, got %f", result.Metrics.TotalReturn)
	}
	if result.Metrics.SharpeRatio != 0 {
		t.Errorf("expected sharpe ratio 0, got %f", result.Metrics.SharpeRatio)
	}
	if len(result.EquityCurve) != 30 {
		t.Errorf("expected 30 equity points, got %d", len(result.EquityCurve))
	}
}

// TestRunMergesDefaults tests that result params carry defaults plus overrides
func TestRunMergesDefaults(t *testing.T) {
	engine := testEngine(t)

	result, err := engine.Run("ma", flatTestBars(30, 100), strategy.Params{"short_window": 3}, 100000)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Params.GetInt("short_window", 0) != 3 {
		t.Errorf("expected override short_window=3, got %v", result.Params["short_window"])
	}
	if result.Params.GetInt("long_window", 0) != 20 {
		t.Errorf("expected default long_window=20, got %v", result.Params["long_window"])
	}
}

// TestCompareRankings tests per-metric rankings over the built-in strategies
func TestCompareRankings(t *testing.T) {
	engine := testEngine(t)
	ids := []string{"ma", "rsi", "bollinger_bands"}

	comparison, err := engine.Compare(ids, flatTestBars(40, 100), nil, 100000)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(comparison.Metrics) != len(ids) {
		t.Errorf("expected metrics for %d strategies, got %d", len(ids), len(comparison.Metrics))
	}

	for _, metric := range []string{MetricTotalReturn, MetricAnnualReturn, MetricSharpeRatio, MetricMaxDrawdown, MetricWinRate} {
		ranking, ok := comparison.Rankings[metric]
		if !ok {
			t.Errorf("missing ranking for %s", metric)
			continue
		}
		if len(ranking) != len(ids) {
			t.Errorf("%s: expected %d entries, got %d", metric, len(ids), len(ranking))
		}
	}

	// All strategies tie at zero on flat data, so input order decides.
	got := make([]string, 0, len(ids))
	for _, entry := range comparison.Rankings[MetricTotalReturn] {
		got = append(got, entry.StrategyID)
	}
	if !reflect.DeepEqual(got, ids) {
		t.Errorf("expected tie to preserve input order %v, got %v", ids, got)
	}
	if comparison.BestStrategy != "ma" {
		t.Errorf("expected best strategy 'ma' on a full tie, got %q", comparison.BestStrategy)
	}
}

// TestCompareUnknownStrategy tests that one bad id fails the whole comparison
func TestCompareUnknownStrategy(t *testing.T) {
	engine := testEngine(t)

	_, err := engine.Compare([]string{"ma", "momentum"}, flatTestBars(30, 100), nil, 100000)
	if !errors.Is(err, models.ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

// TestGridCombinations tests Cartesian enumeration order
func TestGridCombinations(t *testing.T) {
	grid := Grid{
		{Name: "short_window", Values: []float64{5, 10}},
		{Name: "long_window", Values: []float64{20, 30}},
	}

	combos := grid.Combinations()
	expected := []strategy.Params{
		{"short_window": 5, "long_window": 20},
		{"short_window": 5, "long_window": 30},
		{"short_window": 10, "long_window": 20},
		{"short_window": 10, "long_window": 30},
	}

	if len(combos) != len(expected) {
		t.Fatalf("expected %d combinations, got %d", len(expected), len(combos))
	}
	for i := range expected {
		if !reflect.DeepEqual(combos[i], expected[i]) {
			t.Errorf("combination %d: expected %v, got %v", i, expected[i], combos[i])
		}
	}
}

// TestGridCombinationsEmpty tests that an empty grid yields one empty set
func TestGridCombinationsEmpty(t *testing.T) {
	combos := Grid{}.Combinations()
	if len(combos) != 1 || len(combos[0]) != 0 {
		t.Errorf("expected a single empty combination, got %v", combos)
	}
}

// TestOptimizeGridSearch tests the 2x2 search and its tie-break rule
func TestOptimizeGridSearch(t *testing.T) {
	engine := testEngine(t)
	grid := Grid{
		{Name: "short_window", Values: []float64{5, 10}},
		{Name: "long_window", Values: []float64{20, 30}},
	}

	// Flat data ties every combination at zero return, so the first
	// combination in enumeration order must win.
	opt, err := engine.Optimize("ma", flatTestBars(40, 100), grid, 100000)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if opt.Combinations != 4 {
		t.Errorf("expected 4 combinations, got %d", opt.Combinations)
	}
	if opt.BestTotalReturn != 0 {
		t.Errorf("expected best return 0, got %f", opt.BestTotalReturn)
	}
	want := strategy.Params{"short_window": 5, "long_window": 20}
	if !reflect.DeepEqual(opt.BestParams, want) {
		t.Errorf("expected tie-break to pick %v, got %v", want, opt.BestParams)
	}
}

// TestOptimizeUnknownStrategy tests the pre-check before any run starts
func TestOptimizeUnknownStrategy(t *testing.T) {
	engine := testEngine(t)

	_, err := engine.Optimize("momentum", flatTestBars(30, 100), Grid{}, 100000)
	if !errors.Is(err, models.ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

// TestOptimizeDeterministic tests repeated searches agree on the winner
func TestOptimizeDeterministic(t *testing.T) {
	engine := testEngine(t)

	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 10*float64(i%7) + float64(i)
	}
	bars := testBars(closes...)
	grid := Grid{
		{Name: "short_window", Values: []float64{3, 5, 8}},
		{Name: "long_window", Values: []float64{15, 25}},
	}

	first, err := engine.Optimize("ma", bars, grid, 100000)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := engine.Optimize("ma", bars, grid, 100000)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(again.BestParams, first.BestParams) {
			t.Errorf("expected stable best params %v, got %v", first.BestParams, again.BestParams)
		}
		if again.BestTotalReturn != first.BestTotalReturn {
			t.Errorf("expected stable best return %f, got %f", first.BestTotalReturn, again.BestTotalReturn)
		}
	}
}
