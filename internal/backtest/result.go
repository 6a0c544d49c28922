package backtest

import (
	"encoding/json"

	"github.com/yourusername/stocklab/internal/models"
	"github.com/yourusername/stocklab/internal/strategy"
)

// Result is the unit of output for one backtest run: the derived metrics
// plus the order log and equity curve that produced them. It is frozen once
// the run completes.
type Result struct {
	StrategyID  string             `json:"strategy_id"`
	Params      strategy.Params    `json:"params"`
	Metrics     PerformanceMetrics `json:"metrics"`
	Orders      []models.Order     `json:"orders"`
	EquityCurve EquityCurve        `json:"equity_curve"`
}

// ToJSON exports the result to JSON
func (r *Result) ToJSON() string {
	data, _ := json.Marshal(r)
	return string(data)
}
