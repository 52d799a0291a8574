// Package schema holds per-metric validation rules and converts raw driver
// readings into canonical values.
package schema

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/okian/biosense/internal/domain/model"
)

// Range is an inclusive valid interval.
type Range struct {
	Min float64 `json:"min" koanf:"min"`
	Max float64 `json:"max" koanf:"max"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 { return math.Max(r.Min, math.Min(r.Max, v)) }

// Position returns where v sits within the range, 0 at Min and 1 at Max.
func (r Range) Position(v float64) float64 {
	span := r.Max - r.Min
	if span <= 0 {
		return 0
	}
	return (v - r.Min) / span
}

// Schema describes one metric type. Vector metrics apply Range per axis.
type Schema struct {
	Type           model.MetricType
	Unit           string
	Shape          model.Shape
	Range          Range
	Default        model.Value
	NoiseThreshold float64
}

// Validate checks the schema for internal consistency.
func (s Schema) Validate() error {
	switch {
	case s.Type == "":
		return fmt.Errorf("%w: empty metric type", ErrInvalidSchema)
	case math.IsNaN(s.Range.Min) || math.IsNaN(s.Range.Max) || s.Range.Min >= s.Range.Max:
		return fmt.Errorf("%w: %s: min must be below max", ErrInvalidSchema, s.Type)
	case s.NoiseThreshold < 0:
		return fmt.Errorf("%w: %s: negative noise threshold", ErrInvalidSchema, s.Type)
	case s.Default.Shape != s.Shape:
		return fmt.Errorf("%w: %s: default shape %s does not match %s", ErrInvalidSchema, s.Type, s.Default.Shape, s.Shape)
	}
	for _, c := range s.Default.Components() {
		if !s.Range.Contains(c) {
			return fmt.Errorf("%w: %s: default %v outside range", ErrInvalidSchema, s.Type, s.Default)
		}
	}
	return nil
}

// Builtins returns the schemas for the six built-in metric types.
func Builtins() []Schema {
	return []Schema{
		{
			Type:           model.HeartRate,
			Unit:           "bpm",
			Shape:          model.ScalarShape,
			Range:          Range{Min: 30, Max: 220},
			Default:        model.ScalarValue(70),
			NoiseThreshold: 15,
		},
		{
			Type:           model.GSR,
			Unit:           "uS",
			Shape:          model.ScalarShape,
			Range:          Range{Min: 0, Max: 100},
			Default:        model.ScalarValue(5),
			NoiseThreshold: 2,
		},
		{
			Type:           model.EEG,
			Unit:           "uV",
			Shape:          model.ScalarShape,
			Range:          Range{Min: -500, Max: 500},
			Default:        model.ScalarValue(0),
			NoiseThreshold: 50,
		},
		{
			Type:           model.Motion,
			Unit:           "g",
			Shape:          model.VectorShape,
			Range:          Range{Min: -4, Max: 4},
			Default:        model.VectorValue(model.Vector3{X: 0, Y: 0, Z: 1}),
			NoiseThreshold: 0.5,
		},
		{
			Type:           model.Temperature,
			Unit:           "C",
			Shape:          model.ScalarShape,
			Range:          Range{Min: 30, Max: 45},
			Default:        model.ScalarValue(36.5),
			NoiseThreshold: 0.5,
		},
		{
			Type:           model.Battery,
			Unit:           "%",
			Shape:          model.ScalarShape,
			Range:          Range{Min: 0, Max: 100},
			Default:        model.ScalarValue(100),
			NoiseThreshold: 1,
		},
	}
}

// Registry maps metric types to schemas. Schemas are immutable once
// registered; Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[model.MetricType]Schema
}

// NewRegistry creates a Registry preloaded with the built-in schemas.
func NewRegistry() *Registry {
	r := &Registry{schemas: make(map[model.MetricType]Schema)}
	for _, s := range Builtins() {
		r.schemas[s.Type] = s
	}
	return r
}

// Register adds a custom metric schema.
func (r *Registry) Register(s Schema) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemas[s.Type]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateMetric, s.Type)
	}
	r.schemas[s.Type] = s
	return nil
}

// Lookup returns the schema for m.
func (r *Registry) Lookup(m model.MetricType) (Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[m]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownMetric, m)
	}
	return s, nil
}

// Types returns all registered metric types sorted by name.
func (r *Registry) Types() []model.MetricType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.MetricType, 0, len(r.schemas))
	for m := range r.schemas {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
