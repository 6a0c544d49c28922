package backtest

import (
	"encoding/json"
	"math"

	"github.com/yourusername/stocklab/internal/models"
)

const (
	// tradingDaysPerYear is the annualization basis for returns and Sharpe.
	tradingDaysPerYear = 252.0
	// riskFreeAnnualRate is the fixed annual risk-free rate used for Sharpe.
	riskFreeAnnualRate = 0.03
)

// PerformanceMetrics holds the return and risk statistics derived from one
// completed simulation. All percentage fields are expressed as percentages,
// not fractions.
type PerformanceMetrics struct {
	InitialCapital   float64 `json:"initial_capital"`
	FinalCapital     float64 `json:"final_capital"`
	TotalReturn      float64 `json:"total_return_pct"`
	AnnualizedReturn float64 `json:"annualized_return_pct"`
	MaxDrawdown      float64 `json:"max_drawdown_pct"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	WinRate          float64 `json:"win_rate_pct"`
	TradingDays      int     `json:"trading_days"`
	TradeCount       int     `json:"trade_count"`
}

// Analyze derives performance metrics from the equity curve and order log of
// one simulation pass. It is total: degenerate inputs (empty series, zero
// variance, fewer than two orders) resolve to zero-valued statistics rather
// than errors.
func Analyze(bars []models.Bar, equity EquityCurve, orders []models.Order, initialCapital float64) PerformanceMetrics {
	metrics := PerformanceMetrics{
		InitialCapital: initialCapital,
		FinalCapital:   initialCapital,
		TradingDays:    len(bars),
		TradeCount:     len(orders),
	}
	if len(bars) == 0 || len(equity) == 0 || initialCapital <= 0 {
		return metrics
	}

	// Final value is the last pre-transition snapshot plus any held position
	// marked at the last close. A trade on the final bar does not move it.
	last := equity[len(equity)-1]
	metrics.FinalCapital = last.Cash + float64(last.Shares)*bars[len(bars)-1].Close
	metrics.TotalReturn = (metrics.FinalCapital - initialCapital) / initialCapital * 100
	metrics.AnnualizedReturn = annualizeReturn(metrics.TotalReturn, len(bars))

	portfolio := equity.PortfolioValues(bars)
	metrics.MaxDrawdown = calculateMaxDrawdown(portfolio)
	metrics.SharpeRatio = calculateSharpeRatio(GetReturns(portfolio))
	metrics.WinRate = calculateWinRate(orders)

	return metrics
}

// ToJSON exports metrics to JSON
func (m PerformanceMetrics) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

func annualizeReturn(totalReturnPct float64, tradingDays int) float64 {
	if tradingDays == 0 {
		return 0
	}
	return (math.Pow(1+totalReturnPct/100, tradingDaysPerYear/float64(tradingDays)) - 1) * 100
}

func calculateMaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	peak := values[0]
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak == 0 {
			continue
		}
		drawdown := (peak - v) / peak * 100
		if drawdown > maxDD {
			maxDD = drawdown
		}
	}
	return maxDD
}

func calculateSharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := average(returns)
	std := stddev(returns)
	if std == 0 {
		return 0
	}
	riskFreeDaily := riskFreeAnnualRate / tradingDaysPerYear
	return (mean - riskFreeDaily) / std * math.Sqrt(tradingDaysPerYear)
}

// calculateWinRate scores completed buy-then-sell round trips: a win is a
// sell above its buy price. The no-reentry rule guarantees orders alternate,
// so consecutive pairs are round trips. A trailing unmatched Buy (position
// still open at series end) is not scored.
func calculateWinRate(orders []models.Order) float64 {
	if len(orders) < 2 {
		return 0
	}
	total := len(orders) / 2
	wins := 0
	for i := 0; i+1 < len(orders); i += 2 {
		if orders[i+1].Price > orders[i].Price {
			wins++
		}
	}
	return float64(wins) / float64(total) * 100
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	return mean / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
