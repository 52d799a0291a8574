package filter

import (
	"sort"
	"sync"

	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/pkg/ring"

	"gonum.org/v1/gonum/stat"
)

// Default filter configuration constants.
const (
	defaultWindow            = 10
	defaultMinOutlierSamples = 3
)

// Strategy identifies how a metric is smoothed.
type Strategy int

const (
	// MovingAverage averages the whole buffer.
	MovingAverage Strategy = iota
	// OutlierRejection drops samples far from the buffer median before
	// averaging.
	OutlierRejection
	// AxisMean averages each vector axis independently.
	AxisMean
)

// StrategyFor returns the smoothing strategy used for metric m.
func StrategyFor(m model.MetricType, shape model.Shape) Strategy {
	switch {
	case m == model.HeartRate:
		return OutlierRejection
	case shape == model.VectorShape:
		return AxisMean
	default:
		return MovingAverage
	}
}

type key struct {
	device string
	metric model.MetricType
}

// Filter keeps a bounded buffer per (device, metric) and smooths each new
// sample against it. Output is a pure function of the input sequence.
// Filter is safe for concurrent use.
type Filter struct {
	mu                sync.Mutex
	buffers           map[key]*ring.Ring[model.Value]
	window            int
	minOutlierSamples int
}

// New creates a Filter.
func New(opts ...Option) *Filter {
	f := &Filter{
		buffers:           make(map[key]*ring.Ring[model.Value]),
		window:            defaultWindow,
		minOutlierSamples: defaultMinOutlierSamples,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Apply buffers v for (deviceID, m) and returns the smoothed value.
// noiseThreshold is the metric's maximum tolerated deviation from the
// buffer median.
func (f *Filter) Apply(deviceID string, m model.MetricType, v model.Value, noiseThreshold float64) model.Value {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := key{device: deviceID, metric: m}
	buf, ok := f.buffers[k]
	if !ok {
		buf = ring.New[model.Value](f.window)
		f.buffers[k] = buf
	}
	buf.Push(v)
	values := buf.Values()

	switch StrategyFor(m, v.Shape) {
	case OutlierRejection:
		return model.ScalarValue(f.rejectOutliers(scalars(values), v.Scalar, noiseThreshold))
	case AxisMean:
		return model.VectorValue(axisMean(values))
	default:
		return model.ScalarValue(stat.Mean(scalars(values), nil))
	}
}

// Len returns the number of buffered samples for (deviceID, m).
func (f *Filter) Len(deviceID string, m model.MetricType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if buf, ok := f.buffers[key{device: deviceID, metric: m}]; ok {
		return buf.Len()
	}
	return 0
}

// Reset drops every buffer held for deviceID.
func (f *Filter) Reset(deviceID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.buffers {
		if k.device == deviceID {
			delete(f.buffers, k)
		}
	}
}

func (f *Filter) rejectOutliers(values []float64, latest, threshold float64) float64 {
	if len(values) < f.minOutlierSamples {
		return latest
	}
	med := Median(values)
	kept := make([]float64, 0, len(values))
	for _, x := range values {
		if d := x - med; d <= threshold && d >= -threshold {
			kept = append(kept, x)
		}
	}
	if len(kept) == 0 {
		return med
	}
	return stat.Mean(kept, nil)
}

// Median returns the median of values; the mean of the two middle elements
// for even lengths. values is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func scalars(values []model.Value) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.Scalar
	}
	return out
}

func axisMean(values []model.Value) model.Vector3 {
	xs := make([]float64, len(values))
	ys := make([]float64, len(values))
	zs := make([]float64, len(values))
	for i, v := range values {
		xs[i], ys[i], zs[i] = v.Vector.X, v.Vector.Y, v.Vector.Z
	}
	return model.Vector3{
		X: stat.Mean(xs, nil),
		Y: stat.Mean(ys, nil),
		Z: stat.Mean(zs, nil),
	}
}
