package strategy

import "github.com/yourusername/stocklab/internal/models"

// RSI trades oversold and overbought readings of the Relative Strength
// Index computed from rolling mean gain and mean loss.
type RSI struct{}

// NewRSI creates the RSI strategy.
func NewRSI() *RSI {
	return &RSI{}
}

// Name returns strategy name
func (s *RSI) Name() string {
	return "rsi"
}

// Defaults returns default parameter values
func (s *RSI) Defaults() Params {
	return Params{
		"window":           14,
		"oversold_level":   30,
		"overbought_level": 70,
	}
}

// GenerateSignals emits Buy when RSI falls below the oversold level and Sell
// when it rises above the overbought level. Bars before the window produce
// Hold. When mean loss is zero with a positive mean gain, RSI saturates at
// 100; a bar with neither gains nor losses in its window yields Hold.
func (s *RSI) GenerateSignals(bars []models.Bar, params Params) ([]models.Signal, error) {
	if len(bars) == 0 {
		return nil, models.ErrInsufficientData
	}
	p := Merge(s.Defaults(), params)
	window := p.GetInt("window", 14)
	oversold := p.Get("oversold_level", 30)
	overbought := p.Get("overbought_level", 70)

	gains := make([]float64, len(bars))
	losses := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		delta := bars[i].Close - bars[i-1].Close
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	signals := make([]models.Signal, len(bars))
	for i := range bars {
		if i < window {
			continue
		}
		avgGain := windowMean(gains, i, window)
		avgLoss := windowMean(losses, i, window)

		var rsi float64
		switch {
		case avgLoss == 0 && avgGain == 0:
			// flat window, no reading
			continue
		case avgLoss == 0:
			rsi = 100
		default:
			rs := avgGain / avgLoss
			rsi = 100 - 100/(1+rs)
		}

		switch {
		case rsi < oversold:
			signals[i] = models.SignalBuy
		case rsi > overbought:
			signals[i] = models.SignalSell
		}
	}
	return signals, nil
}

// windowMean averages values over the window ending at index i.
func windowMean(values []float64, i, window int) float64 {
	sum := 0.0
	for j := i - window + 1; j <= i; j++ {
		sum += values[j]
	}
	return sum / float64(window)
}
