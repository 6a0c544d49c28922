package strategy

import "github.com/yourusername/stocklab/internal/models"

// KDJ trades crossovers of the stochastic %K and %D lines. %K is the raw
// stochastic value (RSV) smoothed with alpha 1/3, %D is %K smoothed the same
// way, and %J = 3K - 2D.
type KDJ struct{}

// NewKDJ creates the KDJ stochastic strategy.
func NewKDJ() *KDJ {
	return &KDJ{}
}

// Name returns strategy name
func (s *KDJ) Name() string {
	return "kdj"
}

// Defaults returns default parameter values
func (s *KDJ) Defaults() Params {
	return Params{
		"window":           9,
		"oversold_level":   20,
		"overbought_level": 80,
	}
}

const kdjAlpha = 1.0 / 3.0

// GenerateSignals emits Buy when %K crosses above %D and Sell when it crosses
// below. Bars before the window produce Hold, as do bars whose window has no
// high-low range (the smoothing carries the prior reading forward).
func (s *KDJ) GenerateSignals(bars []models.Bar, params Params) ([]models.Signal, error) {
	if len(bars) == 0 {
		return nil, models.ErrInsufficientData
	}
	p := Merge(s.Defaults(), params)
	window := p.GetInt("window", 9)

	lows := rollingLow(bars, window)
	highs := rollingHigh(bars, window)

	// %K and %D recursions start at the first bar with a full window and a
	// non-zero range, seeded with the raw stochastic value there.
	k := make([]float64, len(bars))
	d := make([]float64, len(bars))
	seeded := false
	for i := window - 1; i < len(bars); i++ {
		span := highs[i] - lows[i]
		if span == 0 {
			if seeded {
				k[i] = k[i-1]
				d[i] = d[i-1]
			}
			continue
		}
		rsv := (bars[i].Close - lows[i]) / span * 100
		if !seeded {
			k[i] = rsv
			d[i] = k[i]
			seeded = true
			continue
		}
		k[i] = kdjAlpha*rsv + (1-kdjAlpha)*k[i-1]
		d[i] = kdjAlpha*k[i] + (1-kdjAlpha)*d[i-1]
	}

	signals := make([]models.Signal, len(bars))
	if !seeded {
		return signals, nil
	}
	for i := range bars {
		if i < window {
			continue
		}
		switch {
		case crossedAbove(k, d, i):
			signals[i] = models.SignalBuy
		case crossedBelow(k, d, i):
			signals[i] = models.SignalSell
		}
	}
	return signals, nil
}
