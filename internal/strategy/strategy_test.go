package strategy

import (
	"errors"
	"testing"
	"time"

	"github.com/yourusername/stocklab/internal/models"
)

// barsFromCloses builds a daily bar series where open, high and low track the
// close. Suitable for strategies that only read closes.
func barsFromCloses(closes ...float64) []models.Bar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 10000,
		}
	}
	return bars
}

// flatBars builds n identical bars at the given price
func flatBars(n int, price float64) []models.Bar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return barsFromCloses(closes...)
}

// risingBars builds n bars with strictly increasing closes
func risingBars(n int) []models.Bar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return barsFromCloses(closes...)
}

// TestRegistryUnknownStrategy tests lookup of an unregistered id
func TestRegistryUnknownStrategy(t *testing.T) {
	registry := DefaultRegistry()

	_, err := registry.Get("momentum")
	if !errors.Is(err, models.ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

// TestDefaultRegistryList tests that all built-in strategies are registered
func TestDefaultRegistryList(t *testing.T) {
	registry := DefaultRegistry()

	expected := []string{"bollinger_bands", "kdj", "ma", "ma_crossover", "macd", "rsi"}
	ids := registry.List()

	if len(ids) != len(expected) {
		t.Fatalf("expected %d strategies, got %d: %v", len(expected), len(ids), ids)
	}
	for i, id := range expected {
		if ids[i] != id {
			t.Errorf("expected id %q at position %d, got %q", id, i, ids[i])
		}
	}
}

// TestRegistryAlias tests that the alias resolves to the same strategy
func TestRegistryAlias(t *testing.T) {
	registry := DefaultRegistry()

	s, err := registry.Get("ma_crossover")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.Name() != "ma" {
		t.Errorf("expected alias to resolve to 'ma', got %q", s.Name())
	}
}

// TestGenerateSignalsEmptySeries tests the empty-input error for every strategy
func TestGenerateSignalsEmptySeries(t *testing.T) {
	registry := DefaultRegistry()

	for _, id := range registry.List() {
		s, err := registry.Get(id)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_, err = s.GenerateSignals(nil, nil)
		if !errors.Is(err, models.ErrInsufficientData) {
			t.Errorf("%s: expected ErrInsufficientData, got %v", id, err)
		}
	}
}

// TestGenerateSignalsLength tests that every strategy emits one signal per bar
func TestGenerateSignalsLength(t *testing.T) {
	registry := DefaultRegistry()
	bars := risingBars(40)

	for _, id := range registry.List() {
		s, _ := registry.Get(id)
		signals, err := s.GenerateSignals(bars, nil)
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", id, err)
		}
		if len(signals) != len(bars) {
			t.Errorf("%s: expected %d signals, got %d", id, len(bars), len(signals))
		}
	}
}

// TestFlatSeriesAllHold tests that a constant close series never signals
func TestFlatSeriesAllHold(t *testing.T) {
	registry := DefaultRegistry()
	bars := flatBars(30, 100)

	for _, id := range registry.List() {
		s, _ := registry.Get(id)
		signals, err := s.GenerateSignals(bars, nil)
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", id, err)
		}
		for i, sig := range signals {
			if sig != models.SignalHold {
				t.Errorf("%s: expected Hold at bar %d, got %v", id, i, sig)
			}
		}
	}
}

// TestMACrossoverRisingSeries tests a monotone rising series: the short MA
// never falls back below the long MA, so no Sell can occur
func TestMACrossoverRisingSeries(t *testing.T) {
	s := NewMACrossover()
	bars := risingBars(25)

	signals, err := s.GenerateSignals(bars, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	buys := 0
	for i, sig := range signals {
		if sig == models.SignalSell {
			t.Errorf("unexpected Sell at bar %d", i)
		}
		if sig == models.SignalBuy {
			buys++
		}
		if i < 20 && sig != models.SignalHold {
			t.Errorf("expected Hold inside lookback at bar %d, got %v", i, sig)
		}
	}
	if buys > 1 {
		t.Errorf("expected at most one Buy, got %d", buys)
	}
}

// TestMACrossoverSignals tests exact crossover placement with small windows
func TestMACrossoverSignals(t *testing.T) {
	s := NewMACrossover()
	bars := barsFromCloses(5, 4, 3, 2, 1, 10, 10, 10, 1, 1)
	params := Params{"short_window": 2, "long_window": 3}

	signals, err := s.GenerateSignals(bars, params)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	expected := map[int]models.Signal{5: models.SignalBuy, 8: models.SignalSell}
	for i, sig := range signals {
		want := expected[i]
		if sig != want {
			t.Errorf("bar %d: expected %v, got %v", i, want, sig)
		}
	}
}

// TestRSIPureGainsSell tests that an all-gain window saturates RSI at 100
func TestRSIPureGainsSell(t *testing.T) {
	s := NewRSI()
	bars := risingBars(10)
	params := Params{"window": 3}

	signals, err := s.GenerateSignals(bars, params)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for i, sig := range signals {
		want := models.SignalHold
		if i >= 3 {
			want = models.SignalSell
		}
		if sig != want {
			t.Errorf("bar %d: expected %v, got %v", i, want, sig)
		}
	}
}

// TestRSIPureLossesBuy tests that an all-loss window pins RSI at 0
func TestRSIPureLossesBuy(t *testing.T) {
	s := NewRSI()
	bars := barsFromCloses(100, 99, 98, 97, 96, 95, 94, 93)
	params := Params{"window": 3}

	signals, err := s.GenerateSignals(bars, params)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for i, sig := range signals {
		want := models.SignalHold
		if i >= 3 {
			want = models.SignalBuy
		}
		if sig != want {
			t.Errorf("bar %d: expected %v, got %v", i, want, sig)
		}
	}
}

// TestBollingerBreakouts tests band breakouts in both directions
func TestBollingerBreakouts(t *testing.T) {
	s := NewBollingerBands()
	params := Params{"window": 3, "std_dev": 1}

	tests := []struct {
		name   string
		closes []float64
		index  int
		want   models.Signal
	}{
		{"Upper breakout", []float64{10, 10, 10, 10, 10, 30}, 5, models.SignalSell},
		{"Lower breakout", []float64{10, 10, 10, 10, 10, 2}, 5, models.SignalBuy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals, err := s.GenerateSignals(barsFromCloses(tt.closes...), params)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if signals[tt.index] != tt.want {
				t.Errorf("bar %d: expected %v, got %v", tt.index, tt.want, signals[tt.index])
			}
			for i, sig := range signals {
				if i != tt.index && sig != models.SignalHold {
					t.Errorf("bar %d: expected Hold, got %v", i, sig)
				}
			}
		})
	}
}

// TestKDJCrossovers tests %K/%D crossover placement on a hand-built series
func TestKDJCrossovers(t *testing.T) {
	s := NewKDJ()
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	closes := []float64{5, 5, 9, 1, 9.9, 9.9}
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   c,
			High:   10,
			Low:    0,
			Close:  c,
			Volume: 10000,
		}
	}

	signals, err := s.GenerateSignals(bars, Params{"window": 3})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	expected := map[int]models.Signal{3: models.SignalSell, 5: models.SignalBuy}
	for i, sig := range signals {
		want := expected[i]
		if sig != want {
			t.Errorf("bar %d: expected %v, got %v", i, want, sig)
		}
	}
}

// TestMACDTurningSeries tests that the first signal after a downtrend
// reverses into an uptrend is a Buy
func TestMACDTurningSeries(t *testing.T) {
	s := NewMACD()

	closes := make([]float64, 60)
	for i := 0; i < 30; i++ {
		closes[i] = 100 - float64(i)
	}
	for i := 30; i < 60; i++ {
		closes[i] = 70 + float64(i-30)*2
	}

	signals, err := s.GenerateSignals(barsFromCloses(closes...), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for i := 0; i < 26; i++ {
		if signals[i] != models.SignalHold {
			t.Errorf("expected Hold inside lookback at bar %d, got %v", i, signals[i])
		}
	}

	first := models.SignalHold
	for _, sig := range signals {
		if sig != models.SignalHold {
			first = sig
			break
		}
	}
	if first != models.SignalBuy {
		t.Errorf("expected first signal after the reversal to be Buy, got %v", first)
	}
}

// TestParamsMerge tests default/override merging
func TestParamsMerge(t *testing.T) {
	defaults := Params{"window": 14, "oversold_level": 30}
	overrides := Params{"window": 7}

	merged := Merge(defaults, overrides)
	if merged.GetInt("window", 0) != 7 {
		t.Errorf("expected override to win, got %v", merged["window"])
	}
	if merged.Get("oversold_level", 0) != 30 {
		t.Errorf("expected default to survive, got %v", merged["oversold_level"])
	}
	if defaults.GetInt("window", 0) != 14 {
		t.Error("expected Merge to leave defaults untouched")
	}
}
