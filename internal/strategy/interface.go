// Package strategy defines the Strategy interface for trading-signal
// generation and provides a Registry for managing the built-in variants.
package strategy

import (
	"sort"

	"github.com/yourusername/stocklab/internal/models"
)

// Strategy generates one trade signal per bar for a price series.
// Implementations are pure functions of their inputs: no state survives a
// GenerateSignals call, so a single instance is safe for concurrent runs.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// Defaults returns the strategy's default parameter values.
	Defaults() Params

	// GenerateSignals produces exactly one signal per bar. Bars before the
	// strategy's lookback window yield SignalHold. An empty series fails
	// with models.ErrInsufficientData.
	GenerateSignals(bars []models.Bar, params Params) ([]models.Signal, error)
}

// Registry holds a named collection of strategies for lookup and enumeration.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates an empty strategy Registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// DefaultRegistry returns a registry populated with all built-in strategies.
// The "ma_crossover" id is an alias for "ma", kept for callers that use the
// longer name.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewMACrossover())
	r.Register(NewMACD())
	r.Register(NewRSI())
	r.Register(NewKDJ())
	r.Register(NewBollingerBands())
	r.RegisterAlias("ma_crossover", NewMACrossover())
	return r
}

// Register adds a strategy to the registry, keyed by its Name().
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

// RegisterAlias adds a strategy under an explicit id.
func (r *Registry) RegisterAlias(id string, s Strategy) {
	r.strategies[id] = s
}

// Get retrieves a strategy by id. It fails with models.ErrUnknownStrategy
// when the id is not registered.
func (r *Registry) Get(id string) (Strategy, error) {
	s, ok := r.strategies[id]
	if !ok {
		return nil, models.ErrUnknownStrategy
	}
	return s, nil
}

// List returns a sorted slice of all registered strategy ids.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.strategies))
	for id := range r.strategies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
