package backtest

import (
	"sort"

	"github.com/yourusername/stocklab/internal/models"
	"github.com/yourusername/stocklab/internal/strategy"
)

// Ranking metric keys used in Comparison.Rankings.
const (
	MetricTotalReturn  = "total_return"
	MetricAnnualReturn = "annual_return"
	MetricSharpeRatio  = "sharpe_ratio"
	MetricMaxDrawdown  = "max_drawdown"
	MetricWinRate      = "win_rate"
)

// RankEntry pairs a strategy id with its value for one ranking metric.
type RankEntry struct {
	StrategyID string  `json:"strategy_id"`
	Value      float64 `json:"value"`
}

// Comparison holds per-strategy metrics and per-metric rankings for one
// multi-strategy comparison run.
type Comparison struct {
	Metrics      map[string]PerformanceMetrics `json:"performance_metrics"`
	Rankings     map[string][]RankEntry        `json:"rankings"`
	BestStrategy string                        `json:"best_strategy"`
}

// Compare runs each strategy over the same price series and ranks the
// results per metric. Rankings sort descending by value except max_drawdown,
// where lower is better. Ties keep the order of strategyIDs. BestStrategy is
// the top of the total_return ranking.
func (e *Engine) Compare(strategyIDs []string, bars []models.Bar, paramsByStrategy map[string]strategy.Params, initialCapital float64) (*Comparison, error) {
	comparison := &Comparison{
		Metrics:  make(map[string]PerformanceMetrics, len(strategyIDs)),
		Rankings: make(map[string][]RankEntry),
	}

	ordered := make([]string, 0, len(strategyIDs))
	for _, id := range strategyIDs {
		result, err := e.Run(id, bars, paramsByStrategy[id], initialCapital)
		if err != nil {
			return nil, err
		}
		comparison.Metrics[id] = result.Metrics
		ordered = append(ordered, id)
	}

	for _, metric := range []string{MetricTotalReturn, MetricAnnualReturn, MetricSharpeRatio, MetricMaxDrawdown, MetricWinRate} {
		comparison.Rankings[metric] = rankBy(ordered, comparison.Metrics, metric)
	}
	if ranking := comparison.Rankings[MetricTotalReturn]; len(ranking) > 0 {
		comparison.BestStrategy = ranking[0].StrategyID
	}
	return comparison, nil
}

func rankBy(ids []string, byStrategy map[string]PerformanceMetrics, metric string) []RankEntry {
	entries := make([]RankEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, RankEntry{StrategyID: id, Value: metricValue(byStrategy[id], metric)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if metric == MetricMaxDrawdown {
			return entries[i].Value < entries[j].Value
		}
		return entries[i].Value > entries[j].Value
	})
	return entries
}

func metricValue(m PerformanceMetrics, metric string) float64 {
	switch metric {
	case MetricAnnualReturn:
		return m.AnnualizedReturn
	case MetricSharpeRatio:
		return m.SharpeRatio
	case MetricMaxDrawdown:
		return m.MaxDrawdown
	case MetricWinRate:
		return m.WinRate
	default:
		return m.TotalReturn
	}
}
