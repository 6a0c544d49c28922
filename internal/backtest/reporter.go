package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateConsoleReport formats a run result for terminal output
func GenerateConsoleReport(result *Result) string {
	m := result.Metrics
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Strategy: %s\n", result.StrategyID))
	builder.WriteString(fmt.Sprintf("Initial Capital: %.2f\n", m.InitialCapital))
	builder.WriteString(fmt.Sprintf("Final Capital: %.2f\n", m.FinalCapital))
	builder.WriteString(fmt.Sprintf("Total Return: %.2f%%\n", m.TotalReturn))
	builder.WriteString(fmt.Sprintf("Annualized Return: %.2f%%\n", m.AnnualizedReturn))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", m.MaxDrawdown))
	builder.WriteString(fmt.Sprintf("Sharpe Ratio: %.2f\n", m.SharpeRatio))
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", m.WinRate))
	builder.WriteString(fmt.Sprintf("Trading Days: %d\n", m.TradingDays))
	builder.WriteString(fmt.Sprintf("Trades: %d\n", m.TradeCount))
	return builder.String()
}

// GenerateComparisonReport formats a multi-strategy comparison for terminal
// output, listing the total-return ranking.
func GenerateComparisonReport(comparison *Comparison) string {
	var builder strings.Builder
	builder.WriteString("Strategy Comparison\n")
	builder.WriteString("===================\n")
	for i, entry := range comparison.Rankings[MetricTotalReturn] {
		m := comparison.Metrics[entry.StrategyID]
		builder.WriteString(fmt.Sprintf("%d. %s: return %.2f%%, sharpe %.2f, drawdown %.2f%%, win rate %.2f%%\n",
			i+1, entry.StrategyID, m.TotalReturn, m.SharpeRatio, m.MaxDrawdown, m.WinRate))
	}
	builder.WriteString(fmt.Sprintf("Best Strategy: %s\n", comparison.BestStrategy))
	return builder.String()
}

// ExportToJSON writes a value as indented JSON to outputPath, creating
// parent directories as needed.
func ExportToJSON(v any, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// GenerateCSVExport exports key metrics for spreadsheets
func GenerateCSVExport(result *Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	m := result.Metrics
	csv := "metric,value\n" +
		fmt.Sprintf("initial_capital,%.4f\n", m.InitialCapital) +
		fmt.Sprintf("final_capital,%.4f\n", m.FinalCapital) +
		fmt.Sprintf("total_return_pct,%.4f\n", m.TotalReturn) +
		fmt.Sprintf("annualized_return_pct,%.4f\n", m.AnnualizedReturn) +
		fmt.Sprintf("max_drawdown_pct,%.4f\n", m.MaxDrawdown) +
		fmt.Sprintf("sharpe_ratio,%.4f\n", m.SharpeRatio) +
		fmt.Sprintf("win_rate_pct,%.4f\n", m.WinRate) +
		fmt.Sprintf("trading_days,%d\n", m.TradingDays) +
		fmt.Sprintf("trade_count,%d\n", m.TradeCount)
	return os.WriteFile(outputPath, []byte(csv), 0o644)
}
