package models

// Signal is a strategy's directive for a single bar.
type Signal int

// Signal values. Hold is the zero value so an unset signal is a no-op.
const (
	SignalHold Signal = 0
	SignalBuy  Signal = 1
	SignalSell Signal = -1
)

// String returns the lowercase name of the signal.
func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "buy"
	case SignalSell:
		return "sell"
	default:
		return "hold"
	}
}
