// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
)

// MetricType identifies a kind of physiological telemetry.
type MetricType string

// Built-in metric types.
const (
	HeartRate   MetricType = "heartRate"
	GSR         MetricType = "gsr"
	EEG         MetricType = "eeg"
	Motion      MetricType = "motion"
	Temperature MetricType = "temperature"
	Battery     MetricType = "battery"
)

// BuiltinMetrics lists the metric types every engine knows about, in a
// stable order.
func BuiltinMetrics() []MetricType {
	return []MetricType{HeartRate, GSR, EEG, Motion, Temperature, Battery}
}

// Vector3 is a three-axis reading such as accelerometer output.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Magnitude returns the euclidean length of the vector.
func (v Vector3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Axes returns the components as a slice.
func (v Vector3) Axes() []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// Shape describes whether a metric carries a scalar or a vector.
type Shape int

const (
	// ScalarShape metrics carry a single float.
	ScalarShape Shape = iota
	// VectorShape metrics carry a Vector3.
	VectorShape
)

// String implements fmt.Stringer.
func (s Shape) String() string {
	switch s {
	case ScalarShape:
		return "scalar"
	case VectorShape:
		return "vector"
	default:
		return "unknown"
	}
}

// Value is a canonical metric value, either scalar or vector.
type Value struct {
	Shape  Shape   `json:"shape"`
	Scalar float64 `json:"scalar,omitempty"`
	Vector Vector3 `json:"vector,omitempty"`
}

// ScalarValue builds a scalar Value.
func ScalarValue(v float64) Value { return Value{Shape: ScalarShape, Scalar: v} }

// VectorValue builds a vector Value.
func VectorValue(v Vector3) Value { return Value{Shape: VectorShape, Vector: v} }

// Components returns the value as a flat list of floats (one per axis).
func (v Value) Components() []float64 {
	if v.Shape == VectorShape {
		return v.Vector.Axes()
	}
	return []float64{v.Scalar}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.Shape == VectorShape {
		return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.Vector.X, v.Vector.Y, v.Vector.Z)
	}
	return fmt.Sprintf("%.3f", v.Scalar)
}
