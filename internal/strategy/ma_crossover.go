package strategy

import "github.com/yourusername/stocklab/internal/models"

// MACrossover trades golden/death crosses of a short and a long simple
// moving average of the close.
type MACrossover struct{}

// NewMACrossover creates the moving average crossover strategy.
func NewMACrossover() *MACrossover {
	return &MACrossover{}
}

// Name returns strategy name
func (s *MACrossover) Name() string {
	return "ma"
}

// Defaults returns default parameter values
func (s *MACrossover) Defaults() Params {
	return Params{
		"short_window": 5,
		"long_window":  20,
	}
}

// GenerateSignals emits Buy when the short MA crosses above the long MA and
// Sell when it crosses below. Bars before the long window produce Hold.
func (s *MACrossover) GenerateSignals(bars []models.Bar, params Params) ([]models.Signal, error) {
	if len(bars) == 0 {
		return nil, models.ErrInsufficientData
	}
	p := Merge(s.Defaults(), params)
	shortWindow := p.GetInt("short_window", 5)
	longWindow := p.GetInt("long_window", 20)

	prices := closes(bars)
	shortMA := sma(prices, shortWindow)
	longMA := sma(prices, longWindow)

	signals := make([]models.Signal, len(bars))
	for i := range bars {
		if i < longWindow {
			continue
		}
		switch {
		case crossedAbove(shortMA, longMA, i):
			signals[i] = models.SignalBuy
		case crossedBelow(shortMA, longMA, i):
			signals[i] = models.SignalSell
		}
	}
	return signals, nil
}
