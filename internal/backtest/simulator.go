package backtest

import (
	"github.com/yourusername/stocklab/internal/models"
)

// Simulate replays one strategy's signals over its price series with
// single-position, fully-invested-or-flat semantics: no leverage, no
// shorting, no fees. Fills happen at the bar's close. The returned order log
// and equity curve are deterministic for identical inputs.
//
// A Buy signal while already long and a Sell signal while flat are no-ops.
// An open position at the end of the series is left unrealized; no closing
// order is synthesized.
func Simulate(bars []models.Bar, signals []models.Signal, initialCapital float64) ([]models.Order, EquityCurve, error) {
	if len(bars) == 0 {
		return nil, nil, models.ErrInsufficientData
	}
	if len(bars) != len(signals) {
		return nil, nil, models.ErrLengthMismatch
	}
	if initialCapital <= 0 {
		return nil, nil, models.ErrInvalidCapital
	}

	state := NewSimulationState(initialCapital)
	orders := make([]models.Order, 0)
	curve := make(EquityCurve, 0, len(bars))

	for i, bar := range bars {
		// snapshot before acting on this bar's signal
		curve = append(curve, EquityPoint{Cash: state.Cash, Shares: state.Shares})

		switch signals[i] {
		case models.SignalBuy:
			if state.Shares != 0 {
				continue
			}
			shares := int64(state.Cash / bar.Close)
			if shares < 1 {
				// cannot afford a single share, no trade
				continue
			}
			state.Cash -= float64(shares) * bar.Close
			state.Shares = shares
			orders = append(orders, models.Order{
				Date:   bar.Date,
				Side:   models.OrderSideBuy,
				Price:  bar.Close,
				Shares: shares,
				Cash:   state.Cash,
			})
		case models.SignalSell:
			if state.Shares == 0 {
				continue
			}
			state.Cash += float64(state.Shares) * bar.Close
			orders = append(orders, models.Order{
				Date:   bar.Date,
				Side:   models.OrderSideSell,
				Price:  bar.Close,
				Shares: state.Shares,
				Cash:   state.Cash,
			})
			state.Shares = 0
		}
	}

	return orders, curve, nil
}
