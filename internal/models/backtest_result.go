package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BacktestResultRecord is the persisted form of one backtest run: headline
// statistics as columns for querying plus the full params and metrics as
// JSON documents.
type BacktestResultRecord struct {
	ID             uuid.UUID       `json:"id"`
	StrategyID     string          `json:"strategy_id"`
	Symbol         string          `json:"symbol"`
	RunDate        time.Time       `json:"run_date"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	InitialCapital float64         `json:"initial_capital"`
	FinalCapital   float64         `json:"final_capital"`
	TotalReturn    float64         `json:"total_return"`
	SharpeRatio    float64         `json:"sharpe_ratio"`
	MaxDrawdown    float64         `json:"max_drawdown"`
	WinRate        float64         `json:"win_rate"`
	TradeCount     int             `json:"trade_count"`
	Params         json.RawMessage `json:"params,omitempty"`
	Metrics        json.RawMessage `json:"metrics,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
