package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/biosense/internal/domain/model"
)

// Normalize converts raw into a canonical value for metric m.
//
// The returned value always lies within the schema range. When raw cannot be
// parsed or a scalar falls outside the range, the schema default is returned
// together with an error wrapping model.ErrData. An unregistered metric
// yields ErrUnknownMetric and a zero value.
func (r *Registry) Normalize(m model.MetricType, raw any) (model.Value, error) {
	s, err := r.Lookup(m)
	if err != nil {
		return model.Value{}, err
	}
	return s.Normalize(raw)
}

// Normalize applies the schema to raw. See Registry.Normalize.
func (s Schema) Normalize(raw any) (model.Value, error) {
	if s.Shape == model.VectorShape {
		return s.normalizeVector(raw)
	}
	v, ok := toFloat(raw)
	if !ok {
		return s.Default, fmt.Errorf("%w: %s: %T", ErrUnparsable, s.Type, raw)
	}
	if !s.Range.Contains(v) {
		return s.Default, fmt.Errorf("%w: %s: %g not in [%g, %g]", ErrOutOfRange, s.Type, v, s.Range.Min, s.Range.Max)
	}
	return model.ScalarValue(v), nil
}

// normalizeVector accepts a three axis value or a scalar promoted to
// (value, 0, 1). Each axis is clamped independently.
func (s Schema) normalizeVector(raw any) (model.Value, error) {
	vec, ok := toVector(raw)
	if !ok {
		if f, isScalar := toFloat(raw); isScalar {
			vec, ok = model.Vector3{X: f, Y: 0, Z: 1}, true
		}
	}
	if !ok {
		return s.Default, fmt.Errorf("%w: %s: %T", ErrUnparsable, s.Type, raw)
	}
	clamped := model.Vector3{
		X: s.Range.Clamp(vec.X),
		Y: s.Range.Clamp(vec.Y),
		Z: s.Range.Clamp(vec.Z),
	}
	if clamped != vec {
		return model.VectorValue(clamped), fmt.Errorf("%w: %s: clamped %v", ErrOutOfRange, s.Type, vec)
	}
	return model.VectorValue(clamped), nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func toFloat(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case model.Value:
		if v.Shape != model.ScalarShape {
			return 0, false
		}
		f = v.Scalar
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	return f, finite(f)
}

func toVector(raw any) (model.Vector3, bool) {
	var vec model.Vector3
	switch v := raw.(type) {
	case model.Vector3:
		vec = v
	case *model.Vector3:
		if v == nil {
			return vec, false
		}
		vec = *v
	case [3]float64:
		vec = model.Vector3{X: v[0], Y: v[1], Z: v[2]}
	case []float64:
		if len(v) != 3 {
			return vec, false
		}
		vec = model.Vector3{X: v[0], Y: v[1], Z: v[2]}
	case []any:
		if len(v) != 3 {
			return vec, false
		}
		axes := [3]float64{}
		for i, a := range v {
			f, ok := toFloat(a)
			if !ok {
				return vec, false
			}
			axes[i] = f
		}
		vec = model.Vector3{X: axes[0], Y: axes[1], Z: axes[2]}
	case map[string]any:
		axes := [3]float64{}
		for i, key := range []string{"x", "y", "z"} {
			f, ok := toFloat(v[key])
			if !ok {
				return vec, false
			}
			axes[i] = f
		}
		vec = model.Vector3{X: axes[0], Y: axes[1], Z: axes[2]}
	case model.Value:
		if v.Shape != model.VectorShape {
			return vec, false
		}
		vec = v.Vector
	default:
		return vec, false
	}
	return vec, finite(vec.X) && finite(vec.Y) && finite(vec.Z)
}
