package strategy

import "github.com/yourusername/stocklab/internal/models"

// BollingerBands trades closes breaking out of a rolling mean plus/minus a
// multiple of the rolling sample standard deviation.
type BollingerBands struct{}

// NewBollingerBands creates the Bollinger Bands strategy.
func NewBollingerBands() *BollingerBands {
	return &BollingerBands{}
}

// Name returns strategy name
func (s *BollingerBands) Name() string {
	return "bollinger_bands"
}

// Defaults returns default parameter values
func (s *BollingerBands) Defaults() Params {
	return Params{
		"window":  20,
		"std_dev": 2,
	}
}

// GenerateSignals emits Buy when the close drops below the lower band and
// Sell when it rises above the upper band. Bars before the window produce
// Hold. A zero-variance window collapses both bands onto the mean, so a
// constant series never signals.
func (s *BollingerBands) GenerateSignals(bars []models.Bar, params Params) ([]models.Signal, error) {
	if len(bars) == 0 {
		return nil, models.ErrInsufficientData
	}
	p := Merge(s.Defaults(), params)
	window := p.GetInt("window", 20)
	stdDev := p.Get("std_dev", 2)

	prices := closes(bars)
	mid := sma(prices, window)
	std := rollingStd(prices, window)

	signals := make([]models.Signal, len(bars))
	for i := range bars {
		if i < window {
			continue
		}
		upper := mid[i] + stdDev*std[i]
		lower := mid[i] - stdDev*std[i]
		switch {
		case prices[i] < lower:
			signals[i] = models.SignalBuy
		case prices[i] > upper:
			signals[i] = models.SignalSell
		}
	}
	return signals, nil
}
