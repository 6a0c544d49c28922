package models

import "time"

// OrderSide indicates the direction of a simulated order.
type OrderSide string

// Order sides
const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Order records one simulated fill. Orders are created only at a position
// transition (flat to long or long to flat) and are immutable once appended
// to the order log. Cash is the balance remaining after the fill.
type Order struct {
	Date   time.Time `json:"date"`
	Side   OrderSide `json:"side"`
	Price  float64   `json:"price"`
	Shares int64     `json:"shares"`
	Cash   float64   `json:"cash"`
}
