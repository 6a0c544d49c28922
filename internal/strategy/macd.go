package strategy

import "github.com/yourusername/stocklab/internal/models"

// MACD trades crossovers of the MACD line (fast EMA minus slow EMA of the
// close) against its signal line (EMA of the MACD line).
type MACD struct{}

// NewMACD creates the MACD strategy.
func NewMACD() *MACD {
	return &MACD{}
}

// Name returns strategy name
func (s *MACD) Name() string {
	return "macd"
}

// Defaults returns default parameter values
func (s *MACD) Defaults() Params {
	return Params{
		"fast_period":   12,
		"slow_period":   26,
		"signal_period": 9,
	}
}

// GenerateSignals emits Buy when MACD crosses above its signal line and Sell
// when it crosses below. Bars before the slow period produce Hold.
func (s *MACD) GenerateSignals(bars []models.Bar, params Params) ([]models.Signal, error) {
	if len(bars) == 0 {
		return nil, models.ErrInsufficientData
	}
	p := Merge(s.Defaults(), params)
	fastPeriod := p.GetInt("fast_period", 12)
	slowPeriod := p.GetInt("slow_period", 26)
	signalPeriod := p.GetInt("signal_period", 9)

	prices := closes(bars)
	fastEMA := ema(prices, fastPeriod)
	slowEMA := ema(prices, slowPeriod)

	macdLine := make([]float64, len(bars))
	for i := range macdLine {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine := ema(macdLine, signalPeriod)

	signals := make([]models.Signal, len(bars))
	for i := range bars {
		if i < slowPeriod {
			continue
		}
		switch {
		case crossedAbove(macdLine, signalLine, i):
			signals[i] = models.SignalBuy
		case crossedBelow(macdLine, signalLine, i):
			signals[i] = models.SignalSell
		}
	}
	return signals, nil
}
