// Package aggregate keeps the engine-wide snapshot of the latest filtered
// value per metric.
package aggregate

import (
	"sync"
	"time"

	"github.com/okian/biosense/internal/domain/model"
)

// Aggregator merges filtered values from all devices into one Snapshot.
// Concurrent devices reporting the same metric resolve by last writer. The
// snapshot is never cleared: after a disconnect it keeps the last known
// good values.
type Aggregator struct {
	mu   sync.RWMutex
	snap model.Snapshot
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Apply writes v as the latest value of metric m and returns a copy of the
// updated snapshot.
func (a *Aggregator) Apply(deviceID string, m model.MetricType, v model.Value, ts time.Time) model.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := model.Reading{Value: v.Scalar, Known: true, UpdatedAt: ts, DeviceID: deviceID}
	switch m {
	case model.HeartRate:
		a.snap.HeartRate = r
	case model.GSR:
		a.snap.GSR = r
	case model.EEG:
		a.snap.EEG = r
	case model.Temperature:
		a.snap.Temperature = r
	case model.Battery:
		a.snap.BatteryLevel = r
	case model.Motion:
		vec := v.Vector
		if v.Shape != model.VectorShape {
			vec = model.Vector3{X: v.Scalar}
		}
		a.snap.Motion = model.MotionReading{Value: vec, Known: true, UpdatedAt: ts, DeviceID: deviceID}
	default:
		if v.Shape == model.VectorShape {
			r.Value = v.Vector.Magnitude()
		}
		if a.snap.Custom == nil {
			a.snap.Custom = make(map[model.MetricType]model.Reading)
		}
		a.snap.Custom[m] = r
	}
	a.snap.Timestamp = ts
	return a.snap.Clone()
}

// Snapshot returns a copy of the current snapshot.
func (a *Aggregator) Snapshot() model.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap.Clone()
}
