// Package quality scores how much each metric's current value can be
// trusted.
package quality

import "time"

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithBase sets the starting quality before penalties.
func WithBase(base float64) Option {
	return func(e *Estimator) {
		if base > 0 && base <= 1 {
			e.base = base
		}
	}
}

// WithSmoothing sets the weight given to the previous quality when blending.
func WithSmoothing(previousWeight float64) Option {
	return func(e *Estimator) {
		if previousWeight >= 0 && previousWeight < 1 {
			e.smoothing = previousWeight
		}
	}
}

// WithStaleness sets the staleness thresholds. An update older than stale
// gets the mild penalty and one older than veryStale the strong one.
func WithStaleness(stale, veryStale time.Duration) Option {
	return func(e *Estimator) {
		if stale > 0 && veryStale > stale {
			e.stale = stale
			e.veryStale = veryStale
		}
	}
}
