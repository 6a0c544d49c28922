package backtest

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/yourusername/stocklab/internal/models"
)

// SimulationState tracks the cash and position of one simulation pass. A
// fresh state is allocated per Simulate call and discarded afterwards, so
// concurrent runs never share mutable state.
type SimulationState struct {
	Cash   float64
	Shares int64
}

// NewSimulationState initializes simulation state with the starting capital.
func NewSimulationState(initialCapital float64) *SimulationState {
	return &SimulationState{Cash: initialCapital}
}

// EquityPoint is a snapshot of (cash, shares) taken before a bar's signal is
// acted on. Portfolio value at that bar is Cash + Shares * close.
type EquityPoint struct {
	Cash   float64 `json:"cash"`
	Shares int64   `json:"shares"`
}

// EquityCurve is the per-bar sequence of equity points for one run.
type EquityCurve []EquityPoint

// PortfolioValues marks every equity point to market against its bar's close,
// reconstructing the per-bar portfolio value series.
func (e EquityCurve) PortfolioValues(bars []models.Bar) []float64 {
	n := len(e)
	if len(bars) < n {
		n = len(bars)
	}
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = e[i].Cash + float64(e[i].Shares)*bars[i].Close
	}
	return values
}

// GetReturns calculates periodic returns from a portfolio value series.
func GetReturns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (values[i]-prev)/prev)
	}
	return returns
}

// ToCSV exports the equity curve to a CSV string, one row per bar.
func (e EquityCurve) ToCSV(bars []models.Bar) string {
	var buf bytes.Buffer
	buf.WriteString("date,cash,shares,portfolio_value\n")
	for i, point := range e {
		if i >= len(bars) {
			break
		}
		value := point.Cash + float64(point.Shares)*bars[i].Close
		buf.WriteString(bars[i].Date.Format(time.DateOnly))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Cash))
		buf.WriteString(",")
		buf.WriteString(strconv.FormatInt(point.Shares, 10))
		buf.WriteString(",")
		buf.WriteString(formatFloat(value))
		buf.WriteString("\n")
	}
	return buf.String()
}

// ToJSON exports the equity curve to a JSON string.
func (e EquityCurve) ToJSON() string {
	data, _ := json.Marshal(e)
	return string(data)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
