package strategy

import "sort"

// Params maps parameter names to numeric values. Each strategy publishes
// defaults; caller-supplied values override defaults by key.
type Params map[string]float64

// Get returns the value for name, or fallback when the key is absent.
func (p Params) Get(name string, fallback float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return fallback
}

// GetInt returns the value for name truncated to int, or fallback when the
// key is absent.
func (p Params) GetInt(name string, fallback int) int {
	if v, ok := p[name]; ok {
		return int(v)
	}
	return fallback
}

// Merge returns a copy of defaults with overrides applied on top.
func Merge(defaults, overrides Params) Params {
	merged := make(Params, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Names returns the parameter names in sorted order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
