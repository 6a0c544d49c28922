package models

import "time"

// Bar represents one daily OHLCV price observation for an instrument.
// Bars in a series are strictly increasing by date with no duplicates and
// are immutable once produced by the data source.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}
