package quality

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/internal/domain/schema"
)

// Default estimator constants.
const (
	defaultBase       = 0.8
	defaultSmoothing  = 0.7
	defaultStale      = 1000 * time.Millisecond
	defaultVeryStale  = 5000 * time.Millisecond
	stalePenalty      = 0.8
	veryStalePenalty  = 0.5
	extremityPenalty  = 0.7
	extremityFraction = 0.1
)

type metricState struct {
	quality    float64
	lastUpdate time.Time
}

// Estimator tracks a smoothed quality per metric type. Staleness is judged
// passively by comparing timestamps; there are no timers. Estimator is safe
// for concurrent use.
type Estimator struct {
	mu        sync.RWMutex
	metrics   map[model.MetricType]*metricState
	base      float64
	smoothing float64
	stale     time.Duration
	veryStale time.Duration
}

// New creates an Estimator.
func New(opts ...Option) *Estimator {
	e := &Estimator{
		metrics:   make(map[model.MetricType]*metricState),
		base:      defaultBase,
		smoothing: defaultSmoothing,
		stale:     defaultStale,
		veryStale: defaultVeryStale,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Update scores a new filtered value observed at ts and returns the blended
// quality for the metric.
func (e *Estimator) Update(s schema.Schema, v model.Value, ts time.Time) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.base
	st, seen := e.metrics[s.Type]
	if seen {
		q *= e.staleness(ts.Sub(st.lastUpdate))
	}
	if extreme(s.Range, v) {
		q *= extremityPenalty
	}

	if !seen {
		st = &metricState{quality: clamp01(q)}
		e.metrics[s.Type] = st
	} else {
		st.quality = clamp01(e.smoothing*st.quality + (1-e.smoothing)*q)
	}
	if ts.After(st.lastUpdate) {
		st.lastUpdate = ts
	}
	return st.quality
}

// Quality returns the metric's quality as seen at now: the stored value
// with the staleness penalty for the time since its last update. ok is false
// for metrics never observed.
func (e *Estimator) Quality(m model.MetricType, now time.Time) (q float64, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	st, ok := e.metrics[m]
	if !ok {
		return 0, false
	}
	return clamp01(st.quality * e.staleness(now.Sub(st.lastUpdate))), true
}

// Overall returns the mean quality at now over every observed metric, or 0
// when nothing was observed.
func (e *Estimator) Overall(now time.Time) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.metrics) == 0 {
		return 0
	}
	var sum float64
	for _, st := range e.metrics {
		sum += st.quality * e.staleness(now.Sub(st.lastUpdate))
	}
	return clamp01(sum / float64(len(e.metrics)))
}

// Observed returns the metric types with at least one update, sorted.
func (e *Estimator) Observed() []model.MetricType {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.MetricType, 0, len(e.metrics))
	for m := range e.metrics {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// staleness returns the multiplier for an update gap. Gaps must exceed the
// threshold, so a steady 1 Hz stream is not penalized.
func (e *Estimator) staleness(gap time.Duration) float64 {
	switch {
	case gap > e.veryStale:
		return veryStalePenalty
	case gap > e.stale:
		return stalePenalty
	default:
		return 1
	}
}

// extreme reports whether any component of v sits in the outer tenth of the
// range on either side.
func extreme(r schema.Range, v model.Value) bool {
	for _, c := range v.Components() {
		p := r.Position(c)
		if p < extremityFraction || p > 1-extremityFraction {
			return true
		}
	}
	return false
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
