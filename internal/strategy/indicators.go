package strategy

import (
	"math"

	"github.com/yourusername/stocklab/internal/models"
)

// closes extracts the close price series from a bar slice.
func closes(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, bar := range bars {
		out[i] = bar.Close
	}
	return out
}

// sma returns the simple moving average series. Entries before a full
// window average over the bars available so far; strategies never consult
// those warm-up entries.
func sma(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// ema returns the exponential moving average series with smoothing factor
// 2/(period+1), seeded at the first value.
func ema(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// rollingStd returns the rolling sample standard deviation over window.
// Entries with fewer than two observations are 0.
func rollingStd(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		n := i - start + 1
		if n < 2 {
			continue
		}
		mean := 0.0
		for j := start; j <= i; j++ {
			mean += values[j]
		}
		mean /= float64(n)
		variance := 0.0
		for j := start; j <= i; j++ {
			diff := values[j] - mean
			variance += diff * diff
		}
		out[i] = math.Sqrt(variance / float64(n-1))
	}
	return out
}

// rollingLow returns the rolling minimum of bar lows over window.
func rollingLow(bars []models.Bar, window int) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		low := bars[start].Low
		for j := start + 1; j <= i; j++ {
			if bars[j].Low < low {
				low = bars[j].Low
			}
		}
		out[i] = low
	}
	return out
}

// rollingHigh returns the rolling maximum of bar highs over window.
func rollingHigh(bars []models.Bar, window int) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		high := bars[start].High
		for j := start + 1; j <= i; j++ {
			if bars[j].High > high {
				high = bars[j].High
			}
		}
		out[i] = high
	}
	return out
}

// crossedAbove reports whether fast crossed above slow at index i, i.e. fast
// leads at i but did not lead at i-1.
func crossedAbove(fast, slow []float64, i int) bool {
	return fast[i] > slow[i] && fast[i-1] <= slow[i-1]
}

// crossedBelow reports whether fast crossed below slow at index i.
func crossedBelow(fast, slow []float64, i int) bool {
	return fast[i] < slow[i] && fast[i-1] >= slow[i-1]
}
